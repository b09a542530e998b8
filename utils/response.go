package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabi-Q/Web-Demo-RentaFlex/services"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{"error": title, "message": detail})
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "recurso no encontrado", ctx)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "error interno del servidor", ctx)
}

// HandleValidationErrors shapes validator field errors into a 400 response;
// any other read error becomes a generic bad request.
func HandleValidationErrors(err error, ctx iris.Context) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
		}
		CreateError(iris.StatusBadRequest, "Validation Error",
			"campos inválidos: "+strings.Join(fields, ", "), ctx)
		return
	}
	CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
// Integrity faults and unknown errors surface as 500 without internals.
func HandleServiceError(err error, ctx iris.Context) {
	switch services.KindOf(err) {
	case services.KindValidation:
		CreateError(iris.StatusBadRequest, "Validation Error", err.Error(), ctx)
	case services.KindNotFound:
		CreateError(iris.StatusNotFound, "Not Found", err.Error(), ctx)
	case services.KindConflict:
		CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	case services.KindAuthorization:
		CreateError(iris.StatusForbidden, "Forbidden", err.Error(), ctx)
	case services.KindPolicy:
		CreateError(iris.StatusBadRequest, "Policy Error", err.Error(), ctx)
	default:
		CreateInternalServerError(ctx)
	}
}
