package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

// Repository exposes booking persistence.
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, from, to *time.Time) ([]models.Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a bookings repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) Update(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// List returns bookings whose stay overlaps the [from, to) window, newest
// check-in first. Nil bounds leave that side open.
func (r *repository) List(ctx context.Context, from, to *time.Time) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if from != nil {
		q = q.Where("check_out >= ?", *from)
	}
	if to != nil {
		q = q.Where("check_in < ?", *to)
	}

	var list []models.Booking
	if err := q.Order("check_in DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
