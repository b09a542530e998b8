package routes

import (
	"time"

	"github.com/gabi-Q/Web-Demo-RentaFlex/services"
	"github.com/gabi-Q/Web-Demo-RentaFlex/storage"
	"github.com/gabi-Q/Web-Demo-RentaFlex/utils"
	"github.com/kataras/iris/v12"
)

type CreateReservationInput struct {
	PropiedadID uint      `json:"propiedad_id" validate:"required"`
	Desde       time.Time `json:"desde" validate:"required"`
	Hasta       time.Time `json:"hasta" validate:"required"`
}

// CreateReservation books a date range for the authenticated renter. All
// validation, the conflict check and the dual write live in the service.
func CreateReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateReservationInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	reserva, err := services.NewReservationService(storage.DB).
		Create(userID, input.PropiedadID, input.Desde, input.Hasta)
	if err != nil {
		utils.HandleServiceError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reserva)
}

func CancelReservation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	reservationID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "id de reserva inválido", ctx)
		return
	}

	reserva, svcErr := services.NewReservationService(storage.DB).Cancel(userID, reservationID)
	if svcErr != nil {
		utils.HandleServiceError(svcErr, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"message": "Reserva cancelada exitosamente",
		"reserva": reserva,
	})
}

func GetMisReservas(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	reservas, err := services.NewReservationService(storage.DB).ListForRenter(userID)
	if err != nil {
		utils.HandleServiceError(err, ctx)
		return
	}

	ctx.JSON(reservas)
}

func GetReservasPropiedad(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	propertyID, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "id de propiedad inválido", ctx)
		return
	}

	reservas, svcErr := services.NewReservationService(storage.DB).ListForProperty(userID, propertyID)
	if svcErr != nil {
		utils.HandleServiceError(svcErr, ctx)
		return
	}

	ctx.JSON(reservas)
}
