package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EstadoPendiente  = "pendiente"
	EstadoConfirmada = "confirmada"
	EstadoCancelada  = "cancelada"
)

// Reservation is a booking of a property for the half-open date range
// [Desde, Hasta). Noches and PrecioTotal are frozen at creation time and
// never recomputed from the live property price.
type Reservation struct {
	gorm.Model
	PropertyID  uint      `json:"propiedadID" gorm:"not null;index"`
	UserID      uint      `json:"usuarioID" gorm:"not null;index"`
	Desde       time.Time `json:"desde" gorm:"not null"`
	Hasta       time.Time `json:"hasta" gorm:"not null"`
	Noches      int       `json:"noches"`
	PrecioTotal float64   `json:"precio_total"`
	Estado      string    `json:"estado" gorm:"type:varchar(20);index"` // pendiente, confirmada, cancelada

	Property *Property `json:"propiedad,omitempty" gorm:"foreignKey:PropertyID"`
	User     *User     `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
}

// PropertyAvailability is one booked interval on a property's calendar,
// mirroring exactly one confirmed reservation. Rows are written and removed
// only by the reservation service, inside the same transaction that touches
// the reservation itself.
type PropertyAvailability struct {
	gorm.Model
	PropertyID uint      `json:"propiedadID" gorm:"not null;index"`
	Desde      time.Time `json:"desde" gorm:"not null"`
	Hasta      time.Time `json:"hasta" gorm:"not null"`
}
