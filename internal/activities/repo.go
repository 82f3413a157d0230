package activities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

// Repository exposes read access to activities. The ledger core only ever
// consumes them as commission references; writes happen upstream.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Activity, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an activities repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Activity, error) {
	var list []models.Activity
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("scheduled_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
