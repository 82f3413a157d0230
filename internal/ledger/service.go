package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/internal/entries"
	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	"github.com/casaluna/guesthouse-backend/pkg/enums"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// EntrySummer is the slice of an entry repository the balance algorithm
// needs: the ability to sum matching amounts, optionally inside a caller's
// transaction so pending writes are visible.
type EntrySummer interface {
	SumInTx(ctx context.Context, tx *gorm.DB, filter entries.Filter) (decimal.Decimal, error)
}

// Totals carries the income/expense sums accumulated since the last close.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Since   *time.Time      `json:"since,omitempty"`
}

// Service exposes the petty-cash core: balance reconstruction, period
// closing, and the derived totals for the open period.
type Service interface {
	GetBalance(ctx context.Context, asOf *time.Time) (decimal.Decimal, error)
	BalanceInTx(ctx context.Context, tx *gorm.DB, asOf *time.Time) (decimal.Decimal, error)
	ClosePeriod(ctx context.Context, boundary time.Time, closedBy string) (*models.LedgerClose, error)
	CurrentTotals(ctx context.Context) (*Totals, error)
	LastClose(ctx context.Context) (*models.LedgerClose, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	incomes  EntrySummer
	expenses EntrySummer
}

// NewService wires the ledger service with its close repository and the two
// entry stores it sums deltas from.
func NewService(tx txRunner, repo Repository, incomes, expenses EntrySummer) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger close repository required")
	}
	if incomes == nil {
		return nil, fmt.Errorf("income summer required")
	}
	if expenses == nil {
		return nil, fmt.Errorf("expense summer required")
	}
	return &service{tx: tx, repo: repo, incomes: incomes, expenses: expenses}, nil
}

// GetBalance reconstructs the petty-cash balance as of the given instant, or
// as of now when asOf is nil.
func (s *service) GetBalance(ctx context.Context, asOf *time.Time) (decimal.Decimal, error) {
	return s.BalanceInTx(ctx, nil, asOf)
}

// BalanceInTx is GetBalance running inside an existing transaction. Mutation
// orchestration uses it to stamp post-mutation balances that include the
// caller's uncommitted writes.
//
// The algorithm starts from the latest close at or before asOf (implicit
// zero baseline when none exists), then adds the cash income sum and
// subtracts the cash expense sum over [close.closed_at, asOf). A close
// written after asOf is invisible to the read, so historical queries keep
// answering from the checkpoint that was current at that instant. The
// balance is never cached anywhere in process memory; every caller
// reconstructs it from the same stored state.
func (s *service) BalanceInTx(ctx context.Context, tx *gorm.DB, asOf *time.Time) (decimal.Decimal, error) {
	repo := s.repo.WithTx(tx)

	var last *models.LedgerClose
	var err error
	if asOf != nil {
		last, err = repo.LastCloseBefore(ctx, *asOf)
	} else {
		last, err = repo.LastClose(ctx)
	}
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading last ledger close")
	}

	balance := decimal.Zero
	filter := entries.Filter{
		PaymentMethod: enums.PaymentMethodCash,
		Before:        asOf,
	}
	if last != nil {
		balance = last.Balance
		closedAt := last.ClosedAt
		filter.After = &closedAt
	}

	incomeSum, err := s.incomes.SumInTx(ctx, tx, filter)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing cash incomes")
	}
	expenseSum, err := s.expenses.SumInTx(ctx, tx, filter)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing cash expenses")
	}

	return balance.Add(incomeSum).Sub(expenseSum), nil
}

// ClosePeriod checkpoints the balance at the period boundary. Boundaries must
// strictly increase; closing at or before the last close would corrupt the
// reconstruction invariant, so it is rejected rather than silently recorded.
func (s *service) ClosePeriod(ctx context.Context, boundary time.Time, closedBy string) (*models.LedgerClose, error) {
	if boundary.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a period boundary is required")
	}

	var created *models.LedgerClose
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		last, err := repo.LastClose(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading last ledger close")
		}
		if last != nil && !boundary.After(last.ClosedAt) {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("period already closed through %s", last.ClosedAt.UTC().Format(time.RFC3339)),
			)
		}

		balance, err := s.BalanceInTx(ctx, tx, &boundary)
		if err != nil {
			return err
		}

		record := &models.LedgerClose{
			ClosedAt:  boundary,
			Balance:   balance,
			CreatedBy: closedBy,
		}
		if err := repo.CreateClose(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing ledger close")
		}
		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CurrentTotals sums all income and expense recorded since the last close,
// regardless of payment method. Petty-cash top-ups are excluded from the
// income figure: moving money into the cash box is not revenue.
func (s *service) CurrentTotals(ctx context.Context) (*Totals, error) {
	last, err := s.repo.LastClose(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading last ledger close")
	}

	var since *time.Time
	if last != nil {
		closedAt := last.ClosedAt
		since = &closedAt
	}

	income, err := s.incomes.SumInTx(ctx, nil, entries.Filter{
		After:           since,
		ExcludeCategory: enums.IncomeCategoryPettyCashTopUp,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing incomes")
	}
	expense, err := s.expenses.SumInTx(ctx, nil, entries.Filter{After: since})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing expenses")
	}

	return &Totals{Income: income, Expense: expense, Since: since}, nil
}

func (s *service) LastClose(ctx context.Context) (*models.LedgerClose, error) {
	return s.repo.LastClose(ctx)
}
