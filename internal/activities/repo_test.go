package activities

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Activity{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestFindByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	activity := &models.Activity{
		ID:        uuid.New(),
		BookingID: uuid.New(),
		Name:      "kayak tour",
	}
	if err := db.Create(activity).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	found, err := repo.FindByID(ctx, activity.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "kayak tour" {
		t.Fatalf("unexpected activity %+v", found)
	}

	_, err = repo.FindByID(ctx, uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByBooking_OrdersBySchedule(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	bookingID := uuid.New()
	base := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

	rows := []models.Activity{
		{ID: uuid.New(), BookingID: bookingID, Name: "dinner", ScheduledAt: base.Add(10 * time.Hour)},
		{ID: uuid.New(), BookingID: bookingID, Name: "hike", ScheduledAt: base},
		{ID: uuid.New(), BookingID: uuid.New(), Name: "unrelated", ScheduledAt: base},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	list, err := repo.ListByBooking(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("ListByBooking failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "hike" || list[1].Name != "dinner" {
		t.Fatalf("expected schedule order for the booking, got %+v", list)
	}
}
