package expenses

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

// BalanceReader reconstructs the petty-cash balance inside the caller's
// transaction so the stamped audit snapshot includes the pending mutation.
type BalanceReader interface {
	BalanceInTx(ctx context.Context, tx *gorm.DB, asOf *time.Time) (decimal.Decimal, error)
}

// ReceiptRemover deletes stored receipt photos. Removal is best-effort and
// happens after commit; a failed delete never unwinds a ledger mutation.
type ReceiptRemover interface {
	Delete(ctx context.Context, fileName string) error
}

// Input carries the user-supplied fields of an expense entry.
type Input struct {
	Amount        decimal.Decimal
	Category      string
	PaymentMethod string
	PurchasedAt   time.Time
	PurchasedBy   string
	Description   string
	Comments      string
	PhotoURL      string
	FileName      string
}

// normalized lower-cases the category and payment method so stored values
// are uniform regardless of how the client cased them.
func (in Input) normalized() Input {
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	return in
}

// Service exposes expense entry management.
type Service interface {
	Create(ctx context.Context, input Input, createdBy string) (*models.Expense, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Expense, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	balances BalanceReader
	receipts ReceiptRemover
	log      *logger.Logger
}

// NewService wires the expense service with its repository, the balance
// reader used for audit stamping, and the receipt store.
func NewService(tx txRunner, repo Repository, balances BalanceReader, receipts ReceiptRemover, log *logger.Logger) (Service, error) {
	if tx == nil || repo == nil || balances == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "expense service missing dependencies")
	}
	return &service{tx: tx, repo: repo, balances: balances, receipts: receipts, log: log}, nil
}

// Create records the expense and stamps the resulting petty-cash balance on
// the row, all inside one transaction. The stamp is purely an audit trail:
// reads always reconstruct the balance, they never trust the stamp.
func (s *service) Create(ctx context.Context, input Input, createdBy string) (*models.Expense, error) {
	input = input.normalized()
	if err := validate(input); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Amount:        input.Amount,
		Category:      input.Category,
		PaymentMethod: enums.PaymentMethod(input.PaymentMethod),
		PurchasedAt:   input.PurchasedAt,
		PurchasedBy:   input.PurchasedBy,
		Description:   input.Description,
		Comments:      input.Comments,
		PhotoURL:      input.PhotoURL,
		FileName:      input.FileName,
		CreatedBy:     createdBy,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, expense); err != nil {
			return err
		}
		return s.stampBalance(ctx, tx, repo, expense)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "creating expense entry")
	}
	return expense, nil
}

// Update rewrites the entry and restamps its balance. The entry is fetched
// inside the transaction, so a concurrent delete surfaces as not-found
// instead of a silent no-op. When the receipt photo changed, the old object
// is deleted only after the transaction commits.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Expense, error) {
	input = input.normalized()
	if err := validate(input); err != nil {
		return nil, err
	}

	var expense *models.Expense
	staleFile := ""
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if input.FileName != found.FileName && found.FileName != "" {
			staleFile = found.FileName
		}

		found.Amount = input.Amount
		found.Category = input.Category
		found.PaymentMethod = enums.PaymentMethod(input.PaymentMethod)
		found.PurchasedAt = input.PurchasedAt
		found.PurchasedBy = input.PurchasedBy
		found.Description = input.Description
		found.Comments = input.Comments
		found.PhotoURL = input.PhotoURL
		found.FileName = input.FileName

		if err := repo.Update(ctx, found); err != nil {
			return err
		}
		if err := s.stampBalance(ctx, tx, repo, found); err != nil {
			return err
		}
		expense = found
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "updating expense entry")
	}

	if staleFile != "" {
		s.removeReceipt(ctx, staleFile)
	}
	return expense, nil
}

// Delete removes the entry; its receipt photo is cleaned up after commit.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	removedFile := ""
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		removedFile = found.FileName
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return wrapStoreErr(err, "deleting expense entry")
	}

	if removedFile != "" {
		s.removeReceipt(ctx, removedFile)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter entries.Filter, cursor *pagination.Cursor, limit int) ([]models.Expense, error) {
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}
	return s.repo.List(ctx, filter, cursor, limit)
}

// stampBalance recomputes the balance with the pending mutation visible and
// writes it back onto the row before commit.
func (s *service) stampBalance(ctx context.Context, tx *gorm.DB, repo Repository, expense *models.Expense) error {
	balance, err := s.balances.BalanceInTx(ctx, tx, nil)
	if err != nil {
		return err
	}
	expense.Balance = balance
	return repo.Update(ctx, expense)
}

// removeReceipt deletes a stored photo after the owning row change committed.
// Failures are logged and swallowed: the object becomes orphaned garbage, the
// ledger stays correct.
func (s *service) removeReceipt(ctx context.Context, fileName string) {
	if s.receipts == nil {
		return
	}
	if err := s.receipts.Delete(context.WithoutCancel(ctx), fileName); err != nil {
		if s.log != nil {
			ctx = s.log.WithFields(ctx, map[string]any{"file_name": fileName})
			s.log.Error(ctx, "failed to delete receipt photo", err)
		}
	}
}

func validate(input Input) error {
	if !input.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	if input.Category == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a category is required")
	}
	if !enums.PaymentMethod(input.PaymentMethod).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cash, transfer or card")
	}
	if input.PurchasedAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "the purchase date is required")
	}
	if input.PhotoURL == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a proof-of-purchase photo is required")
	}
	if input.PurchasedBy == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "the purchaser name is required")
	}
	if input.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "a description is required")
	}
	return nil
}

// wrapStoreErr keeps typed application errors intact and tags raw store
// failures as dependency errors.
func wrapStoreErr(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
