package routes

import (
	"encoding/json"

	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"github.com/gabi-Q/Web-Demo-RentaFlex/storage"
	"github.com/gabi-Q/Web-Demo-RentaFlex/utils"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

// Favorites and profile management.

func GetFavoritos(ctx iris.Context) {
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

	ids := usuario.FavoritoIDs()
	propiedades := []models.Property{}
	if len(ids) > 0 {
		res := storage.DB.Preload("Owner").Where("id IN ?", ids).Find(&propiedades)
		if res.Error != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(propiedades)
}

func AgregarFavorito(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	propertyID, err := ctx.Params().GetUint("propiedadID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "id de propiedad inválido", ctx)
		return
	}

	var property models.Property
	propertyExists := storage.DB.Find(&property, propertyID)
	if propertyExists.RowsAffected == 0 {
		utils.CreateError(iris.StatusNotFound, "Not Found", "propiedad no encontrada", ctx)
		return
	}

	var usuario models.User
	if err := storage.DB.First(&usuario, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ids := usuario.FavoritoIDs()
	if slices.Contains(ids, propertyID) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "la propiedad ya está en favoritos", ctx)
		return
	}

	ids = append(ids, propertyID)
	saveFavoritos(&usuario, ids, ctx)
}

func QuitarFavorito(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	propertyID, err := ctx.Params().GetUint("propiedadID")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "id de propiedad inválido", ctx)
		return
	}

	var usuario models.User
	if err := storage.DB.First(&usuario, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ids := usuario.FavoritoIDs()
	if idx := slices.Index(ids, propertyID); idx != -1 {
		ids = append(ids[:idx], ids[idx+1:]...)
	}
	saveFavoritos(&usuario, ids, ctx)
}

func saveFavoritos(usuario *models.User, ids []uint, ctx iris.Context) {
	favoritosJSON, marshalErr := json.Marshal(ids)
	if marshalErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	usuario.Favoritos = datatypes.JSON(favoritosJSON)
	if err := storage.DB.Model(usuario).Update("favoritos", usuario.Favoritos).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(usuario)
}

type UpdateProfileInput struct {
	Nombre   string `json:"nombre" validate:"required,max=256"`
	Telefono string `json:"telefono" validate:"required,max=32"`
}

func ActualizarPerfil(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var usuario models.User
	userExists := storage.DB.Find(&usuario, claims.ID)
	if userExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	usuario.Nombre = input.Nombre
	usuario.Telefono = input.Telefono
	if err := storage.DB.Model(&usuario).Updates(map[string]interface{}{
		"nombre":   input.Nombre,
		"telefono": input.Telefono,
	}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&usuario)
}
