package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

const (
	TipoCasa         = "casa"
	TipoApartamento  = "apartamento"
	TipoDepartamento = "departamento"
)

type Property struct {
	gorm.Model
	OwnerID      uint    `json:"propietarioID" gorm:"not null;index"`
	Titulo       string  `json:"titulo"`
	Tipo         string  `json:"tipo" gorm:"type:varchar(20);index"` // casa, apartamento, departamento
	PrecioNoche  float64 `json:"precio_noche"`
	Descripcion  string  `json:"descripcion"`
	Habitaciones int     `json:"habitaciones"`
	Banos        int     `json:"banos"`
	AreaM2       float64 `json:"area_m2"`
	Imagenes     string  `json:"imagenes"` // JSON array of Cloudinary URLs
	Distrito     string  `json:"distrito" gorm:"index"`
	Provincia    string  `json:"provincia" gorm:"index"`

	Owner          *User                  `json:"propietario,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Reservas       []Reservation          `json:"reservas,omitempty" gorm:"foreignKey:PropertyID"`
	Disponibilidad []PropertyAvailability `json:"disponibilidad,omitempty" gorm:"foreignKey:PropertyID"`
}

// MarshalJSON converts the Imagenes string into an array and strips the
// owner's preloaded properties to avoid a circular reference.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Imagenes []string `json:"imagenes"`
		Owner    *User    `json:"propietario,omitempty"`
		*Alias
	}{
		Imagenes: []string{},
		Owner:    nil,
		Alias:    (*Alias)(p),
	}

	if p.Imagenes != "" {
		var imagenes []string
		if err := json.Unmarshal([]byte(p.Imagenes), &imagenes); err == nil {
			aux.Imagenes = imagenes
		}
	}

	if p.Owner != nil && p.Owner.ID > 0 {
		ownerCopy := *p.Owner
		ownerCopy.Propiedades = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}

// ImagenURLs decodes the stored Imagenes JSON array.
func (p *Property) ImagenURLs() []string {
	if p.Imagenes == "" {
		return []string{}
	}
	var urls []string
	if err := json.Unmarshal([]byte(p.Imagenes), &urls); err != nil {
		return []string{}
	}
	return urls
}

// ValidTipo reports whether t is one of the closed property type enum values.
func ValidTipo(t string) bool {
	return t == TipoCasa || t == TipoApartamento || t == TipoDepartamento
}
