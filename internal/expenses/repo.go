package expenses

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

// Repository manages persistence for expense entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Expense, error)
	SumInTx(ctx context.Context, tx *gorm.DB, filter entries.Filter) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an expense repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "expense entry not found")
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Expense, error) {
	q := filter.Apply(r.db.WithContext(ctx).Model(&models.Expense{}), "purchased_at")
	if cursor != nil {
		q = q.Where("purchased_at > ? OR (purchased_at = ? AND id > ?)", cursor.OccurredAt, cursor.OccurredAt, cursor.ID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var expenses []models.Expense
	if err := q.Order("purchased_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// SumInTx adds up the amounts of all matching expenses. When tx is non-nil
// the sum runs inside that transaction so it observes the caller's pending
// writes. Summation happens in decimal space, never in floats.
func (r *repository) SumInTx(ctx context.Context, tx *gorm.DB, filter entries.Filter) (decimal.Decimal, error) {
	db := r.db
	if tx != nil {
		db = tx
	}

	var amounts []decimal.Decimal
	q := filter.Apply(db.WithContext(ctx).Model(&models.Expense{}), "purchased_at")
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}
