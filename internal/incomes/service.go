package incomes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/internal/entries"
	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	"github.com/casaluna/guesthouse-backend/pkg/enums"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
	"github.com/casaluna/guesthouse-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BookingFinder is the slice of the booking store income validation needs.
type BookingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// ActivityFinder is the slice of the activity store income validation needs.
type ActivityFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error)
}

// Input carries the user-supplied fields of an income entry.
type Input struct {
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	ReceivedAt    time.Time
	Description   string
	Comments      string
	BookingID     *uuid.UUID
	ActivityID    *uuid.UUID
}

// normalized lower-cases the category and payment method so stored values
// and the conditional validation rules cannot diverge on casing.
func (in Input) normalized() Input {
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	return in
}

// Service exposes income entry management.
type Service interface {
	Create(ctx context.Context, input Input, createdBy string) (*models.Income, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Income, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Income, error)
	List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Income, error)
}

type service struct {
	tx         txRunner
	repo       Repository
	bookings   BookingFinder
	activities ActivityFinder
	log        *logger.Logger
}

// NewService wires the income service with its repository and the reference
// stores used for conditional validation.
func NewService(tx txRunner, repo Repository, bookings BookingFinder, activities ActivityFinder, log *logger.Logger) (Service, error) {
	if tx == nil || repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "income service missing dependencies")
	}
	return &service{tx: tx, repo: repo, bookings: bookings, activities: activities, log: log}, nil
}

func (s *service) Create(ctx context.Context, input Input, createdBy string) (*models.Income, error) {
	input = input.normalized()
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	income := &models.Income{
		Amount:        input.Amount,
		Category:      input.Category,
		PaymentMethod: enums.PaymentMethod(input.PaymentMethod),
		ReceivedAt:    input.ReceivedAt,
		Description:   input.Description,
		Comments:      input.Comments,
		BookingID:     input.BookingID,
		ActivityID:    input.ActivityID,
		CreatedBy:     createdBy,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, income)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating income entry")
	}
	return income, nil
}

// Update rewrites the entry. The existence check runs inside the same
// transaction as the write, so an entry deleted concurrently surfaces as
// not-found instead of a silent no-op.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Income, error) {
	input = input.normalized()
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	var income *models.Income
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		found.Amount = input.Amount
		found.Category = input.Category
		found.PaymentMethod = enums.PaymentMethod(input.PaymentMethod)
		found.ReceivedAt = input.ReceivedAt
		found.Description = input.Description
		found.Comments = input.Comments
		found.BookingID = input.BookingID
		found.ActivityID = input.ActivityID

		if err := repo.Update(ctx, found); err != nil {
			return err
		}
		income = found
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "updating income entry")
	}
	return income, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return wrapStoreErr(err, "deleting income entry")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Income, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Income, error) {
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}
	return s.repo.List(ctx, filter, cursor, limit)
}

// wrapStoreErr keeps typed application errors intact and tags raw store
// failures as dependency errors.
func wrapStoreErr(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

// validate runs the ordered rule chain and stops at the first failure so the
// user always sees a single actionable message.
func (s *service) validate(ctx context.Context, input Input) error {
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if input.Category == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a category is required")
	}
	if !enums.PaymentMethod(input.PaymentMethod).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cash, transfer or card")
	}
	if input.ReceivedAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "the received date is required")
	}

	switch input.Category {
	case enums.IncomeCategoryCommission:
		if input.BookingID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission income must reference a booking")
		}
		if input.ActivityID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission income must reference an activity")
		}
		if input.Comments == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "commission income requires a comment describing the arrangement")
		}
	case enums.IncomeCategoryGuestPayment:
		if input.BookingID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "guest payment income must reference a booking")
		}
	case enums.IncomeCategoryOther:
		if input.Comments == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "other income requires a comment explaining its origin")
		}
	}

	if input.ActivityID != nil && input.BookingID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "an activity reference requires a booking")
	}

	if input.BookingID != nil {
		if err := s.checkBooking(ctx, *input.BookingID); err != nil {
			return err
		}
	}
	if input.ActivityID != nil {
		if err := s.checkActivity(ctx, *input.ActivityID); err != nil {
			return err
		}
	}
	return nil
}

// checkBooking verifies the referenced booking exists. A missing booking
// rejects the entry; a store failure is logged and the entry goes through,
// since blocking cash registration on a flaky lookup loses real money data.
func (s *service) checkBooking(ctx context.Context, id uuid.UUID) error {
	if s.bookings == nil {
		return nil
	}
	_, err := s.bookings.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
		return pkgerrors.New(pkgerrors.CodeValidation, "the referenced booking does not exist")
	}
	if s.log != nil {
		ctx = s.log.WithFields(ctx, map[string]any{"booking_id": id.String(), "error": err.Error()})
		s.log.Warn(ctx, "booking lookup failed, accepting entry unverified")
	}
	return nil
}

func (s *service) checkActivity(ctx context.Context, id uuid.UUID) error {
	if s.activities == nil {
		return nil
	}
	_, err := s.activities.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
		return pkgerrors.New(pkgerrors.CodeValidation, "the referenced activity does not exist")
	}
	if s.log != nil {
		ctx = s.log.WithFields(ctx, map[string]any{"activity_id": id.String(), "error": err.Error()})
		s.log.Warn(ctx, "activity lookup failed, accepting entry unverified")
	}
	return nil
}
