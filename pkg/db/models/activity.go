package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an excursion or service sold alongside a booking. Commission
// incomes must reference the activity the commission was earned on.
type Activity struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	BookingID   uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index" json:"booking_id"`
	Name        string    `gorm:"column:name;size:128;not null" json:"name"`
	Provider    string    `gorm:"column:provider;size:128" json:"provider"`
	ScheduledAt time.Time `gorm:"column:scheduled_at" json:"scheduled_at"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
