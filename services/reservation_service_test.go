package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gabi-Q/Web-Demo-RentaFlex/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Reservation{},
		&models.PropertyAvailability{},
	))
	return db
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func newTestService(t *testing.T, db *gorm.DB, now time.Time) *ReservationService {
	t.Helper()
	svc := NewReservationService(db)
	svc.now = func() time.Time { return now }
	return svc
}

func createTestProperty(t *testing.T, db *gorm.DB, ownerID uint, precioNoche float64) *models.Property {
	t.Helper()
	property := &models.Property{
		OwnerID:      ownerID,
		Titulo:       "Casa de playa",
		Tipo:         models.TipoCasa,
		PrecioNoche:  precioNoche,
		Descripcion:  "Frente al mar",
		Habitaciones: 3,
		Banos:        2,
		AreaM2:       120,
		Imagenes:     `["https://res.cloudinary.com/demo/image/upload/v1/casa.jpg"]`,
		Distrito:     "Miraflores",
		Provincia:    "Lima",
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func calendarCount(t *testing.T, db *gorm.DB, propertyID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PropertyAvailability{}).
		Where("property_id = ?", propertyID).Count(&count).Error)
	return count
}

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestCreateReservationPriceDeterminism(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	reserva, err := svc.Create(2, property.ID, date(2024, 3, 1), date(2024, 3, 5))
	require.NoError(t, err)

	assert.Equal(t, 4, reserva.Noches)
	assert.Equal(t, 400.0, reserva.PrecioTotal)
	assert.Equal(t, models.EstadoConfirmada, reserva.Estado)
	assert.Equal(t, uint(2), reserva.UserID)
	assert.Equal(t, int64(1), calendarCount(t, db, property.ID))
}

func TestCreateReservationPriceFrozenAtCreation(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	reserva, err := svc.Create(2, property.ID, date(2024, 3, 1), date(2024, 3, 5))
	require.NoError(t, err)

	// raising the nightly price later must not touch the stored total
	require.NoError(t, db.Model(property).Update("precio_noche", 500).Error)

	var stored models.Reservation
	require.NoError(t, db.First(&stored, reserva.ID).Error)
	assert.Equal(t, 400.0, stored.PrecioTotal)
}

func TestCreateReservationInvalidRange(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, property.ID, date(2024, 3, 5), date(2024, 3, 1))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Create(2, property.ID, date(2024, 3, 5), date(2024, 3, 5))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	assert.Equal(t, int64(0), calendarCount(t, db, property.ID))
}

func TestCreateReservationRejectsPastStart(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, property.ID, date(2023, 12, 30), date(2024, 1, 5))
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// same-day start is allowed
	_, err = svc.Create(2, property.ID, date(2024, 1, 1), date(2024, 1, 5))
	require.NoError(t, err)
}

func TestCreateReservationPropertyNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, 999, date(2024, 3, 1), date(2024, 3, 5))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreateReservationConflict(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	_, err = svc.Create(3, property.ID, date(2024, 3, 12), date(2024, 3, 18))
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	// no partial state from the failed create
	var reservas int64
	db.Model(&models.Reservation{}).Where("property_id = ?", property.ID).Count(&reservas)
	assert.Equal(t, int64(1), reservas)
	assert.Equal(t, int64(1), calendarCount(t, db, property.ID))
}

func TestCreateReservationBackToBack(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	// check-in on the existing booking's check-out date is allowed
	_, err = svc.Create(3, property.ID, date(2024, 3, 15), date(2024, 3, 20))
	require.NoError(t, err)

	assert.Equal(t, int64(2), calendarCount(t, db, property.ID))
}

func TestCancelReservationFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	reserva, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(2, reserva.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EstadoCancelada, cancelled.Estado)
	assert.Equal(t, int64(0), calendarCount(t, db, property.ID))

	// the exact same range can be booked again
	_, err = svc.Create(3, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, int64(1), calendarCount(t, db, property.ID))
}

func TestCancelReservationNoticeWindow(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	// desde one calendar day out: rejected
	tooClose, err := svc.Create(2, property.ID, date(2024, 1, 2), date(2024, 1, 5))
	require.NoError(t, err)

	_, err = svc.Cancel(2, tooClose.ID)
	require.Error(t, err)
	assert.Equal(t, KindPolicy, KindOf(err))

	var stored models.Reservation
	require.NoError(t, db.First(&stored, tooClose.ID).Error)
	assert.Equal(t, models.EstadoConfirmada, stored.Estado)

	// desde exactly two calendar days out: allowed
	boundary, err := svc.Create(3, property.ID, date(2024, 1, 3), date(2024, 1, 6))
	require.NoError(t, err)

	_, err = svc.Cancel(3, boundary.ID)
	require.NoError(t, err)
}

func TestCancelReservationAuthorization(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	reserva, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	_, err = svc.Cancel(99, reserva.ID)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))

	// state unchanged
	var stored models.Reservation
	require.NoError(t, db.First(&stored, reserva.ID).Error)
	assert.Equal(t, models.EstadoConfirmada, stored.Estado)
	assert.Equal(t, int64(1), calendarCount(t, db, property.ID))
}

func TestCancelReservationAlreadyCancelled(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	reserva, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	_, err = svc.Cancel(2, reserva.ID)
	require.NoError(t, err)

	// second cancel is rejected and must not remove another interval
	_, err = svc.Cancel(2, reserva.ID)
	require.Error(t, err)
	assert.Equal(t, KindPolicy, KindOf(err))
	assert.Equal(t, int64(0), calendarCount(t, db, property.ID))
}

func TestCancelReservationNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db, testNow)

	_, err := svc.Cancel(2, 12345)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListForRenter(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)

	older := models.Reservation{
		PropertyID: property.ID, UserID: 2,
		Desde: date(2024, 2, 1), Hasta: date(2024, 2, 5),
		Noches: 4, PrecioTotal: 400, Estado: models.EstadoConfirmada,
	}
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&older).Error)

	newer := models.Reservation{
		PropertyID: property.ID, UserID: 2,
		Desde: date(2024, 3, 1), Hasta: date(2024, 3, 5),
		Noches: 4, PrecioTotal: 400, Estado: models.EstadoConfirmada,
	}
	newer.CreatedAt = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&newer).Error)

	otherRenter := models.Reservation{
		PropertyID: property.ID, UserID: 3,
		Desde: date(2024, 4, 1), Hasta: date(2024, 4, 5),
		Noches: 4, PrecioTotal: 400, Estado: models.EstadoConfirmada,
	}
	require.NoError(t, db.Create(&otherRenter).Error)

	svc := newTestService(t, db, testNow)
	reservas, err := svc.ListForRenter(2)
	require.NoError(t, err)

	require.Len(t, reservas, 2)
	assert.Equal(t, newer.ID, reservas[0].ID) // newest first
	assert.Equal(t, older.ID, reservas[1].ID)
}

func TestListForPropertyOwnerGate(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	_, err := svc.Create(2, property.ID, date(2024, 3, 10), date(2024, 3, 15))
	require.NoError(t, err)

	// owner sees the reservations
	reservas, err := svc.ListForProperty(1, property.ID)
	require.NoError(t, err)
	assert.Len(t, reservas, 1)

	// anyone else is rejected
	_, err = svc.ListForProperty(2, property.ID)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))

	// missing property
	_, err = svc.ListForProperty(1, 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestConcurrentCreatesNoDoubleBooking(t *testing.T) {
	db := setupTestDB(t)
	property := createTestProperty(t, db, 1, 100)
	svc := newTestService(t, db, testNow)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(uint(i+10), property.ID, date(2024, 3, 10), date(2024, 3, 15))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, KindConflict, KindOf(err))
		}
	}
	assert.Equal(t, 1, successes)

	var confirmed int64
	db.Model(&models.Reservation{}).
		Where("property_id = ? AND estado = ?", property.ID, models.EstadoConfirmada).
		Count(&confirmed)
	assert.Equal(t, int64(1), confirmed)
	assert.Equal(t, int64(1), calendarCount(t, db, property.ID))
}
