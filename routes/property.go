package routes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"github.com/gabi-Q/Web-Demo-RentaFlex/storage"
	"github.com/gabi-Q/Web-Demo-RentaFlex/utils"
	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type CreateListingInput struct {
	Titulo       string   `json:"titulo" validate:"required,max=256"`
	Tipo         string   `json:"tipo" validate:"required,oneof=casa apartamento departamento"`
	PrecioNoche  float64  `json:"precio_noche" validate:"gte=0"`
	Descripcion  string   `json:"descripcion" validate:"required"`
	Habitaciones int      `json:"habitaciones" validate:"required,gte=1"`
	Banos        int      `json:"banos" validate:"required,gte=1"`
	AreaM2       float64  `json:"area_m2" validate:"required,gt=0"`
	Imagenes     []string `json:"imagenes" validate:"required,min=1"`
	Distrito     string   `json:"distrito" validate:"required,max=128"`
	Provincia    string   `json:"provincia" validate:"required,max=128"`
}

type UpdateListingInput struct {
	Titulo       string   `json:"titulo" validate:"required,max=256"`
	Tipo         string   `json:"tipo" validate:"required,oneof=casa apartamento departamento"`
	PrecioNoche  float64  `json:"precio_noche" validate:"gte=0"`
	Descripcion  string   `json:"descripcion" validate:"required"`
	Habitaciones int      `json:"habitaciones" validate:"required,gte=1"`
	Banos        int      `json:"banos" validate:"required,gte=1"`
	AreaM2       float64  `json:"area_m2" validate:"required,gt=0"`
	Imagenes     []string `json:"imagenes" validate:"required,min=1"`
	Distrito     string   `json:"distrito" validate:"required,max=128"`
	Provincia    string   `json:"provincia" validate:"required,max=128"`
}

func CreateProperty(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	imagesArr := insertImages(input.Imagenes, "")
	if len(imagesArr) == 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "se requiere al menos una imagen", ctx)
		return
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	property := models.Property{
		OwnerID:      claims.ID,
		Titulo:       input.Titulo,
		Tipo:         input.Tipo,
		PrecioNoche:  input.PrecioNoche,
		Descripcion:  input.Descripcion,
		Habitaciones: input.Habitaciones,
		Banos:        input.Banos,
		AreaM2:       input.AreaM2,
		Imagenes:     string(imagesJSON),
		Distrito:     input.Distrito,
		Provincia:    input.Provincia,
	}

	result := storage.DB.Create(&property)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&property)
}

// GetPropiedades lists properties with the browse filters the frontend
// sends as query parameters. The fecha_inicio/fecha_fin pair keeps only
// properties with no confirmed reservation overlapping that window.
func GetPropiedades(ctx iris.Context) {
	query := storage.DB.Preload("Owner")

	if tipo := strings.ToLower(ctx.URLParam("tipo")); tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}
	if precioMin := ctx.URLParamFloat64Default("precio_min", -1); precioMin >= 0 {
		query = query.Where("precio_noche >= ?", precioMin)
	}
	if precioMax := ctx.URLParamFloat64Default("precio_max", -1); precioMax >= 0 {
		query = query.Where("precio_noche <= ?", precioMax)
	}
	if habitaciones := ctx.URLParamIntDefault("habitaciones", 0); habitaciones > 0 {
		query = query.Where("habitaciones = ?", habitaciones)
	}
	if banos := ctx.URLParamIntDefault("banos", 0); banos > 0 {
		query = query.Where("banos = ?", banos)
	}
	if distrito := ctx.URLParam("distrito"); distrito != "" {
		query = query.Where("distrito ILIKE ?", "%"+distrito+"%")
	}
	if provincia := ctx.URLParam("provincia"); provincia != "" {
		query = query.Where("provincia ILIKE ?", "%"+provincia+"%")
	}

	fechaInicio := ctx.URLParam("fecha_inicio")
	fechaFin := ctx.URLParam("fecha_fin")
	if fechaInicio != "" && fechaFin != "" {
		inicio, errInicio := time.Parse("2006-01-02", fechaInicio)
		fin, errFin := time.Parse("2006-01-02", fechaFin)
		if errInicio != nil || errFin != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "formato de fecha inválido (se espera AAAA-MM-DD)", ctx)
			return
		}
		query = query.Where(
			"NOT EXISTS (SELECT 1 FROM reservations r WHERE r.property_id = properties.id AND r.estado = ? AND r.desde < ? AND r.hasta > ? AND r.deleted_at IS NULL)",
			models.EstadoConfirmada, fin, inicio)
	}

	var propiedades []models.Property
	result := query.Order("created_at DESC").Find(&propiedades)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(propiedades)
}

func GetFeaturedPropiedades(ctx iris.Context) {
	var propiedades []models.Property
	result := storage.DB.Preload("Owner").Order("created_at DESC").Limit(6).Find(&propiedades)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(propiedades)
}

func BuscarPropiedades(ctx iris.Context) {
	q := ctx.URLParam("q")
	if q == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "el parámetro q es requerido", ctx)
		return
	}

	pattern := "%" + q + "%"
	var propiedades []models.Property
	result := storage.DB.Preload("Owner").
		Where("titulo ILIKE ? OR descripcion ILIKE ? OR distrito ILIKE ? OR provincia ILIKE ?",
			pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Find(&propiedades)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(propiedades)
}

func GetUserProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var propiedades []models.Property
	result := storage.DB.Where("owner_id = ?", claims.ID).Order("created_at DESC").Find(&propiedades)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(propiedades)
}

func GetPropiedad(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	propertyExists := storage.DB.Preload("Owner").Find(&property, id)
	if propertyExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&property)
}

func UpdateProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	propertyExists := storage.DB.Find(&property, id)
	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if property.OwnerID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var input UpdateListingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Re-uploading images replaces the set; drop replaced Cloudinary files
	oldImages := property.ImagenURLs()
	imagesArr := insertImages(input.Imagenes, fmt.Sprintf("%d", property.ID))
	if len(imagesArr) == 0 {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "se requiere al menos una imagen", ctx)
		return
	}
	for _, old := range oldImages {
		kept := false
		for _, img := range imagesArr {
			if img == old {
				kept = true
				break
			}
		}
		if !kept {
			storage.DeleteImage(old)
		}
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	property.Titulo = input.Titulo
	property.Tipo = input.Tipo
	property.PrecioNoche = input.PrecioNoche
	property.Descripcion = input.Descripcion
	property.Habitaciones = input.Habitaciones
	property.Banos = input.Banos
	property.AreaM2 = input.AreaM2
	property.Imagenes = string(imagesJSON)
	property.Distrito = input.Distrito
	property.Provincia = input.Provincia

	rowsUpdated := storage.DB.Model(&property).Updates(property)
	if rowsUpdated.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&property)
}

func DeleteProperty(ctx iris.Context) {
	id := ctx.Params().Get("id")

	var property models.Property
	propertyExists := storage.DB.Find(&property, id)
	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)
	if property.OwnerID != claims.ID {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	for _, imageURL := range property.ImagenURLs() {
		if !storage.DeleteImage(imageURL) {
			fmt.Printf("WARNING: Failed to delete image from Cloudinary: %s\n", imageURL)
		}
	}

	propertyDeleted := storage.DB.Delete(&models.Property{}, id)
	if propertyDeleted.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Where("property_id = ?", id).Delete(&models.Reservation{})
	storage.DB.Where("property_id = ?", id).Delete(&models.PropertyAvailability{})

	ctx.StatusCode(iris.StatusNoContent)
}

// insertImages uploads base64 payloads to Cloudinary and passes through
// URLs that are already hosted there.
func insertImages(images []string, propertyID string) []string {
	var imagesArr []string
	for _, image := range images {
		if image == "" {
			continue
		}
		if strings.Contains(image, "res.cloudinary.com") {
			imagesArr = append(imagesArr, image)
			continue
		}

		publicID := "propiedad_" + uuid.NewString()
		if propertyID != "" {
			publicID = "propiedad/" + propertyID + "/" + publicID
		}

		url := storage.UploadBase64Image(image, publicID)
		if url != "" {
			imagesArr = append(imagesArr, url)
		} else {
			fmt.Printf("Failed to upload image to Cloudinary with publicID: %s\n", publicID)
		}
	}
	return imagesArr
}
