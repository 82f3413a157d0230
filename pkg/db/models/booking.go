package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking is a stay reservation. The ledger core consumes bookings read-only:
// certain income categories must reference one, and descriptions are enriched
// with the guest name.
type Booking struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	GuestName string    `gorm:"column:guest_name;size:128;not null" json:"guest_name"`
	CheckIn   time.Time `gorm:"column:check_in;not null;index" json:"check_in"`
	CheckOut  time.Time `gorm:"column:check_out;not null" json:"check_out"`
	Status    string    `gorm:"column:status;size:32;not null;default:confirmed" json:"status"`
	Notes     string    `gorm:"column:notes;size:512" json:"notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
