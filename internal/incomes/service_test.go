package incomes_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/internal/incomes"
	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	"github.com/casaluna/guesthouse-backend/pkg/enums"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

type gormTx struct {
	db *gorm.DB
}

func (g *gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type fakeBookings struct {
	known map[uuid.UUID]bool
	err   error
}

func (f *fakeBookings) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.known[id] {
		return &models.Booking{ID: id}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
}

type fakeActivities struct {
	known map[uuid.UUID]bool
	err   error
}

func (f *fakeActivities) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.known[id] {
		return &models.Activity{ID: id}, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "activity not found")
}

type harness struct {
	db         *gorm.DB
	svc        incomes.Service
	bookings   *fakeBookings
	activities *fakeActivities
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Income{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	bookings := &fakeBookings{known: map[uuid.UUID]bool{}}
	activities := &fakeActivities{known: map[uuid.UUID]bool{}}

	svc, err := incomes.NewService(&gormTx{db: conn}, incomes.NewRepository(conn), bookings, activities, nil)
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return &harness{db: conn, svc: svc, bookings: bookings, activities: activities}
}

func validInput() incomes.Input {
	return incomes.Input{
		Amount:        decimal.NewFromInt(150),
		Category:      enums.IncomeCategoryOther,
		PaymentMethod: "cash",
		ReceivedAt:    time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
		Comments:      "tip jar",
	}
}

func TestCreate_PersistsEntry(t *testing.T) {
	h := newHarness(t)

	income, err := h.svc.Create(context.Background(), validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if income.ID == uuid.Nil {
		t.Fatal("expected an assigned ID")
	}
	if income.CreatedBy != "marta" {
		t.Fatalf("expected creator to be recorded, got %q", income.CreatedBy)
	}

	var count int64
	if err := h.db.Model(&models.Income{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestCreate_ValidationStopsAtFirstFailure(t *testing.T) {
	h := newHarness(t)
	bookingID := uuid.New()

	cases := []struct {
		name    string
		mutate  func(*incomes.Input)
		message string
	}{
		{
			name:    "zero amount",
			mutate:  func(in *incomes.Input) { in.Amount = decimal.Zero },
			message: "amount must be greater than zero",
		},
		{
			name:    "negative amount wins over missing category",
			mutate:  func(in *incomes.Input) { in.Amount = decimal.NewFromInt(-5); in.Category = "" },
			message: "amount must be greater than zero",
		},
		{
			name:    "missing category",
			mutate:  func(in *incomes.Input) { in.Category = "" },
			message: "a category is required",
		},
		{
			name:    "unknown payment method",
			mutate:  func(in *incomes.Input) { in.PaymentMethod = "barter" },
			message: "payment method must be cash, transfer or card",
		},
		{
			name:    "missing received date",
			mutate:  func(in *incomes.Input) { in.ReceivedAt = time.Time{} },
			message: "the received date is required",
		},
		{
			name: "commission without booking",
			mutate: func(in *incomes.Input) {
				in.Category = enums.IncomeCategoryCommission
			},
			message: "commission income must reference a booking",
		},
		{
			name: "commission without activity",
			mutate: func(in *incomes.Input) {
				in.Category = enums.IncomeCategoryCommission
				in.BookingID = &bookingID
			},
			message: "commission income must reference an activity",
		},
		{
			name: "guest payment without booking",
			mutate: func(in *incomes.Input) {
				in.Category = enums.IncomeCategoryGuestPayment
			},
			message: "guest payment income must reference a booking",
		},
		{
			name: "other without comments",
			mutate: func(in *incomes.Input) {
				in.Comments = ""
			},
			message: "other income requires a comment explaining its origin",
		},
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

func TestCreate_RejectsUnknownBooking(t *testing.T) {
	h := newHarness(t)
	ghost := uuid.New()

	input := validInput()
	input.Category = enums.IncomeCategoryGuestPayment
	input.BookingID = &ghost

	_, err := h.svc.Create(context.Background(), input, "marta")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Message() != "the referenced booking does not exist" {
		t.Fatalf("unexpected message %q", appErr.Message())
	}
}

func TestCreate_AcceptsKnownReferences(t *testing.T) {
	h := newHarness(t)
	bookingID := uuid.New()
	activityID := uuid.New()
	h.bookings.known[bookingID] = true
	h.activities.known[activityID] = true

	input := validInput()
	input.Category = enums.IncomeCategoryCommission
	input.BookingID = &bookingID
	input.ActivityID = &activityID
	input.Comments = "10% on kayak tour"

	if _, err := h.svc.Create(context.Background(), input, "marta"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestCreate_LookupOutageDoesNotBlockEntry(t *testing.T) {
	h := newHarness(t)
	h.bookings.err = errors.New("connection reset")
	bookingID := uuid.New()

	input := validInput()
	input.Category = enums.IncomeCategoryGuestPayment
	input.BookingID = &bookingID

	// Registering cash movements beats referential strictness when the
	// lookup backend is down.
	if _, err := h.svc.Create(context.Background(), input, "marta"); err != nil {
		t.Fatalf("expected entry to go through unverified, got %v", err)
	}
}

func TestUpdate_RewritesFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	input := validInput()
	input.Amount = decimal.NewFromInt(999)
	input.PaymentMethod = "transfer"

	updated, err := h.svc.Update(ctx, created.ID, input)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(999)) {
		t.Fatalf("expected amount 999, got %s", updated.Amount)
	}
	if updated.PaymentMethod != enums.PaymentMethodTransfer {
		t.Fatalf("expected transfer, got %s", updated.PaymentMethod)
	}
}

func TestCreate_MixedCaseCategoryCannotDodgeConditionalRules(t *testing.T) {
	h := newHarness(t)

	input := validInput()
	input.Category = "Commission"
	input.Comments = ""

	_, err := h.svc.Create(context.Background(), input, "marta")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Message() != "commission income must reference a booking" {
		t.Fatalf("expected the commission booking rule, got %q", appErr.Message())
	}
}

func TestCreate_StoresNormalizedCasing(t *testing.T) {
	h := newHarness(t)

	input := validInput()
	input.Category = "  Other "
	input.PaymentMethod = "CASH"
	created, err := h.svc.Create(context.Background(), input, "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Category != enums.IncomeCategoryOther {
		t.Fatalf("expected lower-cased category, got %q", created.Category)
	}
	if created.PaymentMethod != enums.PaymentMethodCash {
		t.Fatalf("expected lower-cased payment method, got %q", created.PaymentMethod)
	}
}

func TestCreate_ActivityWithoutBookingIsRejected(t *testing.T) {
	h := newHarness(t)

	activityID := uuid.New()
	h.activities.known[activityID] = true

	input := validInput()
	input.ActivityID = &activityID

	_, err := h.svc.Create(context.Background(), input, "marta")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if appErr.Message() != "an activity reference requires a booking" {
		t.Fatalf("expected the pairing rule, got %q", appErr.Message())
	}
}

// rowStealingTx deletes the target row right before running the batch,
// standing in for a concurrent delete that wins the race.
type rowStealingTx struct {
	db *gorm.DB
	id uuid.UUID
}

func (r *rowStealingTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := r.db.WithContext(ctx).Delete(&models.Income{}, "id = ?", r.id).Error; err != nil {
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

	svc, err := incomes.NewService(
		&rowStealingTx{db: h.db, id: created.ID},
		incomes.NewRepository(h.db), h.bookings, h.activities, nil)
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

func TestDelete_RemovesEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, validInput(), "marta")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := h.svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = h.svc.Get(ctx, created.ID)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
