package services

import (
	"errors"
	"sync"
	"time"

	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"gorm.io/gorm"
)

// cancelNoticeDays is the minimum lead time, in calendar days rounded up,
// required before a reservation's start date to permit cancellation.
const cancelNoticeDays = 2

// propertyLocks serializes the conflict check and the dual write per
// property. Two concurrent creates for overlapping ranges on the same
// property must not both pass the check.
var propertyLocks sync.Map // uint -> *sync.Mutex

func lockProperty(propertyID uint) *sync.Mutex {
	v, _ := propertyLocks.LoadOrStore(propertyID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// ReservationService owns the reservation lifecycle and the property
// availability calendar. The calendar is mutated nowhere else.
type ReservationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db, now: time.Now}
}

// Create books [desde, hasta) on the property for the renter. The
// reservation row and the calendar entry are written in one transaction,
// after the conflict check, under the property's lock. New reservations are
// auto-confirmed.
func (s *ReservationService) Create(renterID, propertyID uint, desde, hasta time.Time) (*models.Reservation, error) {
	desde = NormalizeDay(desde)
	hasta = NormalizeDay(hasta)

	if !desde.Before(hasta) {
		return nil, NewValidationError("la fecha de fin debe ser posterior a la fecha de inicio")
	}
	if desde.Before(NormalizeDay(s.now())) {
		return nil, NewValidationError("la fecha de inicio no puede estar en el pasado")
	}

	var property models.Property
	if err := s.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("propiedad no encontrada")
		}
		return nil, err
	}

	noches := Nights(desde, hasta)
	reserva := &models.Reservation{
		PropertyID:  propertyID,
		UserID:      renterID,
		Desde:       desde,
		Hasta:       hasta,
		Noches:      noches,
		PrecioTotal: Total(noches, property.PrecioNoche),
		Estado:      models.EstadoConfirmada,
	}

	mu := lockProperty(propertyID)
	defer mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		conflict, err := HasConflict(tx, propertyID, desde, hasta)
		if err != nil {
			return err
		}
		if conflict {
			return NewConflictError("la propiedad no está disponible para las fechas seleccionadas")
		}
		if err := tx.Create(reserva).Error; err != nil {
			return err
		}
		return AddInterval(tx, propertyID, desde, hasta)
	})
	if err != nil {
		return nil, err
	}
	return reserva, nil
}

// Cancel transitions a confirmed reservation to cancelada and frees its
// calendar interval. Only the renter may cancel, and only with at least
// cancelNoticeDays of notice. Cancelling an already-cancelled reservation
// is rejected with a policy error rather than treated as idempotent.
func (s *ReservationService) Cancel(requesterID, reservationID uint) (*models.Reservation, error) {
	var reserva models.Reservation
	if err := s.db.First(&reserva, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("reserva no encontrada")
		}
		return nil, err
	}

	if reserva.UserID != requesterID {
		return nil, NewAuthorizationError("no autorizado")
	}
	if reserva.Estado == models.EstadoCancelada {
		return nil, NewPolicyError("la reserva ya está cancelada")
	}
	if reserva.Estado != models.EstadoConfirmada {
		return nil, NewPolicyError("solo se pueden cancelar reservas confirmadas")
	}
	if DaysUntil(s.now(), reserva.Desde) < cancelNoticeDays {
		return nil, NewPolicyError("no se puede cancelar la reserva con menos de 2 días de anticipación")
	}

	mu := lockProperty(reserva.PropertyID)
	defer mu.Unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reserva).Update("estado", models.EstadoCancelada).Error; err != nil {
			return err
		}
		return RemoveInterval(tx, reserva.PropertyID, reserva.Desde, reserva.Hasta)
	})
	if err != nil {
		return nil, err
	}
	return &reserva, nil
}

// ListForRenter returns the renter's reservations, newest first.
func (s *ReservationService) ListForRenter(renterID uint) ([]models.Reservation, error) {
	var reservas []models.Reservation
	err := s.db.Preload("Property").
		Where("user_id = ?", renterID).
		Order("created_at DESC").
		Find(&reservas).Error
	if err != nil {
		return nil, err
	}
	return reservas, nil
}

// ListForProperty returns a property's reservations, newest first. Only the
// property owner may see them.
func (s *ReservationService) ListForProperty(requesterID, propertyID uint) ([]models.Reservation, error) {
	var property models.Property
	if err := s.db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("propiedad no encontrada")
		}
		return nil, err
	}
	if property.OwnerID != requesterID {
		return nil, NewAuthorizationError("no autorizado")
	}

	var reservas []models.Reservation
	err := s.db.Preload("User").
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&reservas).Error
	if err != nil {
		return nil, err
	}
	return reservas, nil
}
