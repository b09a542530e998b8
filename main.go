package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gabi-Q/Web-Demo-RentaFlex/routes"
	"github.com/gabi-Q/Web-Demo-RentaFlex/storage"
	"github.com/gabi-Q/Web-Demo-RentaFlex/utils"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	auth := app.Party("/api/auth")
	{
		auth.Post("/register", routes.Register)
		auth.Post("/login", routes.Login)
		auth.Get("/me", accessTokenVerifierMiddleware, routes.GetCurrentUser)
	}

	propiedades := app.Party("/api/propiedades")
	{
		propiedades.Get("/", routes.GetPropiedades)
		propiedades.Get("/featured", routes.GetFeaturedPropiedades)
		propiedades.Get("/buscar", routes.BuscarPropiedades)
		propiedades.Get("/user", accessTokenVerifierMiddleware, routes.GetUserProperties)
		propiedades.Get("/{id}", routes.GetPropiedad)
		propiedades.Post("/", accessTokenVerifierMiddleware, routes.CreateProperty)
		propiedades.Put("/{id}", accessTokenVerifierMiddleware, routes.UpdateProperty)
		propiedades.Delete("/{id}", accessTokenVerifierMiddleware, routes.DeleteProperty)
	}

	reservas := app.Party("/api/reservas", accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware)
	{
		reservas.Post("/", routes.CreateReservation)
		reservas.Put("/{id:uint}/cancelar", routes.CancelReservation)
		reservas.Get("/mis-reservas", routes.GetMisReservas)
		reservas.Get("/propiedad/{id:uint}", routes.GetReservasPropiedad)
	}

	usuarios := app.Party("/api/usuarios", accessTokenVerifierMiddleware)
	{
		usuarios.Get("/favoritos", routes.GetFavoritos)
		usuarios.Post("/favoritos/{propiedadID:uint}", routes.AgregarFavorito)
		usuarios.Delete("/favoritos/{propiedadID:uint}", routes.QuitarFavorito)
		usuarios.Put("/perfil", routes.ActualizarPerfil)
	}

	app.Post("/api/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	addr := ":" + port

	fmt.Println("Starting server on", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
