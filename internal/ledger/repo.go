package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/pkg/db/models"
)

// Repository persists ledger close checkpoints. Closes are append-only: there
// is deliberately no update or delete method here, and none may be added.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LastClose(ctx context.Context) (*models.LedgerClose, error)
	LastCloseBefore(ctx context.Context, asOf time.Time) (*models.LedgerClose, error)
	CreateClose(ctx context.Context, record *models.LedgerClose) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a close-record repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LastClose returns the most recent checkpoint, or nil when no period has
// ever been closed. Any other failure propagates: the balance algorithm must
// not mistake a read error for an empty ledger.
func (r *repository) LastClose(ctx context.Context) (*models.LedgerClose, error) {
	var record models.LedgerClose
	err := r.db.WithContext(ctx).Order("closed_at DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// LastCloseBefore returns the most recent checkpoint at or before the given
// instant, or nil when no period had been closed by then. Historical balance
// reads depend on it: a checkpoint written later must never shadow the one
// that was current at asOf.
func (r *repository) LastCloseBefore(ctx context.Context, asOf time.Time) (*models.LedgerClose, error) {
	var record models.LedgerClose
	err := r.db.WithContext(ctx).Where("closed_at <= ?", asOf).Order("closed_at DESC").First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) CreateClose(ctx context.Context, record *models.LedgerClose) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}
