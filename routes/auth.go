package routes

import (
	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"github.com/gabi-Q/Web-Demo-RentaFlex/storage"
	"github.com/gabi-Q/Web-Demo-RentaFlex/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

type RegisterUserInput struct {
	Nombre   string `json:"nombre" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=256"`
	Telefono string `json:"telefono" validate:"required,max=32"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(ctx iris.Context) {
	var input RegisterUserInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.User
	userExists := storage.DB.Where("email = ?", input.Email).Find(&existing)
	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists.RowsAffected > 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "el email ya está registrado", ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(input.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	usuario := models.User{
		Nombre:   input.Nombre,
		Email:    input.Email,
		Password: hashedPassword,
		Telefono: input.Telefono,
		Rol:      models.RolUsuario,
	}
	if err := storage.DB.Create(&usuario).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	returnUserWithTokens(usuario, ctx)
}

func Login(ctx iris.Context) {
	var input LoginUserInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var usuario models.User
	userExists := storage.DB.Where("email = ?", input.Email).Find(&usuario)
	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "credenciales inválidas", ctx)
		return
	}

	if !passwordsMatch(usuario.Password, input.Password) {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "credenciales inválidas", ctx)
		return
	}

	returnUserWithTokens(usuario, ctx)
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var usuario models.User
	userExists := storage.DB.Find(&usuario, claims.ID)
	if userExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if userExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&usuario)
}

func hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func passwordsMatch(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

func returnUserWithTokens(usuario models.User, ctx iris.Context) {
	tokenPair, err := utils.CreateTokenPair(usuario.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"user":         &usuario,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}
