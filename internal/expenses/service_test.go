package expenses_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/internal/expenses"
	"github.com/casaluna/guesthouse-backend/internal/incomes"
	"github.com/casaluna/guesthouse-backend/internal/ledger"
	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

type gormTx struct {
	db *gorm.DB
}

func (g *gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type fakeReceipts struct {
	deleted []string
	err     error
}

func (f *fakeReceipts) Delete(ctx context.Context, fileName string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, fileName)
	return nil
}

type harness struct {
	db       *gorm.DB
	svc      expenses.Service
	ledger   ledger.Service
	closes   ledger.Repository
	receipts *fakeReceipts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Income{}, &models.Expense{}, &models.LedgerClose{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	tx := &gormTx{db: conn}
	expenseRepo := expenses.NewRepository(conn)
	closeRepo := ledger.NewRepository(conn)

	ledgerSvc, err := ledger.NewService(tx, closeRepo, incomes.NewRepository(conn), expenseRepo)
	if err != nil {
		t.Fatalf("failed to build ledger service: %v", err)
	}

	receipts := &fakeReceipts{}
	svc, err := expenses.NewService(tx, expenseRepo, ledgerSvc, receipts, nil)
	if err != nil {
		t.Fatalf("failed to build expense service: %v", err)
	}

	return &harness{db: conn, svc: svc, ledger: ledgerSvc, closes: closeRepo, receipts: receipts}
}

func (h *harness) seedClose(t *testing.T, balance int64, at time.Time) {
	t.Helper()
	err := h.closes.CreateClose(context.Background(), &models.LedgerClose{
		ClosedAt: at,
		Balance:  decimal.NewFromInt(balance),
	})
	if err != nil {
		t.Fatalf("seed close failed: %v", err)
	}
}

func validInput() expenses.Input {
	return expenses.Input{
		Amount:        decimal.NewFromInt(300),
		Category:      "supplies",
		PaymentMethod: "cash",
		PurchasedAt:   time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC),
		PurchasedBy:   "marta",
		Description:   "cleaning supplies",
		PhotoURL:      "https://storage.example.com/receipts/r1.jpg",
	}
}

func TestCreate_StampsPostMutationBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.seedClose(t, 1000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	created, err := h.svc.Create(ctx, validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.Balance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected stamped balance 700, got %s", created.Balance)
	}

	// The stamp must be persisted, not just set on the returned struct.
	stored, err := h.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !stored.Balance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected stored balance 700, got %s", stored.Balance)
	}
}

func TestCreate_NonCashExpenseDoesNotMoveBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.seedClose(t, 1000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	input := validInput()
	input.PaymentMethod = "card"
	created, err := h.svc.Create(ctx, input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("card expense must not touch the cash balance, got %s", created.Balance)
	}
}

type failingBalances struct{}

func (failingBalances) BalanceInTx(ctx context.Context, tx *gorm.DB, asOf *time.Time) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection reset")
}

func TestCreate_MidBatchFailureLeavesNoPartialState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	svc, err := expenses.NewService(&gormTx{db: h.db}, expenses.NewRepository(h.db), failingBalances{}, h.receipts, nil)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	if _, err := svc.Create(ctx, validInput(), "marta"); err == nil {
		t.Fatal("expected Create to fail")
	}

	var count int64
	if err := h.db.Model(&models.Expense{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed batch must roll back entirely, found %d rows", count)
	}
}

func TestDelete_RestoresBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.seedClose(t, 1000, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))

	created, err := h.svc.Create(ctx, validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	balance, err := h.ledger.GetBalance(ctx, nil)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("expected 700 after expense, got %s", balance)
	}

	if err := h.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	balance, err = h.ledger.GetBalance(ctx, nil)
	if err != nil {
		t.Fatalf("GetBalance failed: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("removing the entry must restore the balance, got %s", balance)
	}
}

func TestUpdate_CleansUpReplacedReceiptAfterCommit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	input := validInput()
	input.PhotoURL = "https://storage.example.com/receipts/old.jpg"
	input.FileName = "receipts/old.jpg"
	created, err := h.svc.Create(ctx, input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	input.PhotoURL = "https://storage.example.com/receipts/new.jpg"
	input.FileName = "receipts/new.jpg"
	if _, err := h.svc.Update(ctx, created.ID, input); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(h.receipts.deleted) != 1 || h.receipts.deleted[0] != "receipts/old.jpg" {
		t.Fatalf("expected stale receipt cleanup, got %v", h.receipts.deleted)
	}
}

func TestUpdate_KeepingReceiptDeletesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	input := validInput()
	input.FileName = "receipts/keep.jpg"
	created, err := h.svc.Create(ctx, input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	input.Amount = decimal.NewFromInt(500)
	if _, err := h.svc.Update(ctx, created.ID, input); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(h.receipts.deleted) != 0 {
		t.Fatalf("unchanged receipt must not be deleted, got %v", h.receipts.deleted)
	}
}

func TestDelete_ReceiptFailureIsSwallowed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	input := validInput()
	input.FileName = "receipts/doomed.jpg"
	created, err := h.svc.Create(ctx, input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	h.receipts.err = errors.New("bucket unreachable")
	if err := h.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete must succeed despite receipt cleanup failure, got %v", err)
	}

	_, err = h.svc.Get(ctx, created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected row gone, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name    string
		mutate  func(*expenses.Input)
		message string
	}{
		{"zero amount", func(in *expenses.Input) { in.Amount = decimal.Zero }, "amount must be greater than zero"},
		{"missing category", func(in *expenses.Input) { in.Category = "" }, "a category is required"},
		{"bad method", func(in *expenses.Input) { in.PaymentMethod = "iou" }, "payment method must be cash, transfer or card"},
		{"missing date", func(in *expenses.Input) { in.PurchasedAt = time.Time{} }, "the purchase date is required"},
		{"missing photo", func(in *expenses.Input) { in.PhotoURL = "" }, "a proof-of-purchase photo is required"},
		{"missing purchaser", func(in *expenses.Input) { in.PurchasedBy = "" }, "the purchaser name is required"},
		{"missing description", func(in *expenses.Input) { in.Description = "" }, "a description is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := h.svc.Create(context.Background(), input, "marta")
			appErr := pkgerrors.As(err)
			if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if appErr.Message() != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, appErr.Message())
			}
		})
	}
}

func TestCreate_NormalizesCategoryAndMethodCasing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	input := validInput()
	input.Category = "  Supplies "
	input.PaymentMethod = "Cash"
	created, err := h.svc.Create(ctx, input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Category != "supplies" {
		t.Fatalf("expected lower-cased category, got %q", created.Category)
	}
	if created.PaymentMethod != "cash" {
		t.Fatalf("expected lower-cased payment method, got %q", created.PaymentMethod)
	}
}

// rowStealingTx deletes the target row right before running the batch,
// standing in for a concurrent delete that wins the race.
type rowStealingTx struct {
	db *gorm.DB
	id uuid.UUID
}

func (r *rowStealingTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", r.id).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

func TestUpdate_ConcurrentlyDeletedEntryIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	svc, err := expenses.NewService(
		&rowStealingTx{db: h.db, id: created.ID},
		expenses.NewRepository(h.db), h.ledger, h.receipts, nil)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	_, err = svc.Update(ctx, created.ID, validInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found when the row vanished mid-flight, got %v", err)
	}
}

func TestUpdate_UnknownIDIsNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Update(context.Background(), uuid.New(), validInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
