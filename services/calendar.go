package services

import (
	"fmt"
	"log"
	"time"

	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"gorm.io/gorm"
)

// Availability calendar operations. Entries mirror confirmed reservations
// one to one and are only ever touched inside the reservation service's
// transactions; handlers never patch the calendar directly.

// HasConflict reports whether [desde, hasta) overlaps any confirmed
// reservation of the property. The inequalities are strict so a check-in on
// another booking's check-out date does not conflict.
func HasConflict(db *gorm.DB, propertyID uint, desde, hasta time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Reservation{}).
		Where("property_id = ? AND estado = ? AND desde < ? AND hasta > ?",
			propertyID, models.EstadoConfirmada, hasta, desde).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddInterval appends a booked interval to the property's calendar. It does
// not check for conflicts; that is the caller's job before writing.
func AddInterval(db *gorm.DB, propertyID uint, desde, hasta time.Time) error {
	entry := models.PropertyAvailability{
		PropertyID: propertyID,
		Desde:      desde,
		Hasta:      hasta,
	}
	return db.Create(&entry).Error
}

// RemoveInterval deletes the calendar entry whose desde/hasta match the
// cancelled reservation by value. Anything other than exactly one match
// means the calendar drifted from the reservations table; the transaction
// is rolled back and the fault logged for manual reconciliation.
func RemoveInterval(db *gorm.DB, propertyID uint, desde, hasta time.Time) error {
	res := db.Where("property_id = ? AND desde = ? AND hasta = ?", propertyID, desde, hasta).
		Delete(&models.PropertyAvailability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		msg := fmt.Sprintf("calendario inconsistente: %d intervalos coinciden con [%s, %s) en propiedad %d",
			res.RowsAffected, desde.Format("2006-01-02"), hasta.Format("2006-01-02"), propertyID)
		log.Printf("INTEGRITY: %s", msg)
		return NewIntegrityError(msg)
	}
	return nil
}
