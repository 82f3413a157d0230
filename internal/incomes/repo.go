package incomes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/internal/entries"
	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
	"github.com/casaluna/guesthouse-backend/pkg/pagination"
)

// Repository manages persistence for income entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, income *models.Income) error
	Update(ctx context.Context, income *models.Income) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Income, error)
	List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Income, error)
	SumInTx(ctx context.Context, tx *gorm.DB, filter entries.Filter) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an income repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, income *models.Income) error {
	if income.ID == uuid.Nil {
		income.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(income).Error
}

func (r *repository) Update(ctx context.Context, income *models.Income) error {
	return r.db.WithContext(ctx).Save(income).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Income{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Income, error) {
	var income models.Income
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&income).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "income entry not found")
	}
	if err != nil {
		return nil, err
	}
	return &income, nil
}

func (r *repository) List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Income, error) {
	q := filter.Apply(r.db.WithContext(ctx).Model(&models.Income{}), "received_at")
	if cursor != nil {
		q = q.Where("received_at > ? OR (received_at = ? AND id > ?)", cursor.OccurredAt, cursor.OccurredAt, cursor.ID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var incomes []models.Income
	if err := q.Order("received_at ASC, id ASC").Find(&incomes).Error; err != nil {
		return nil, err
	}
	return incomes, nil
}

// SumInTx adds up the amounts of all matching incomes. When tx is non-nil the
// sum runs inside that transaction so it observes the caller's pending writes.
// Summation happens in decimal space, never in floats.
func (r *repository) SumInTx(ctx context.Context, tx *gorm.DB, filter entries.Filter) (decimal.Decimal, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var amounts []decimal.Decimal
	q := filter.Apply(db.WithContext(ctx).Model(&models.Income{}), "received_at")
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}
