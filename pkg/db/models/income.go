package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casaluna/guesthouse-backend/pkg/enums"
)

// Income records money received by the business. Cash incomes raise the
// petty-cash balance; everything else only feeds the period totals.
type Income struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Category      string              `gorm:"column:category;size:64;not null" json:"category"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	ReceivedAt    time.Time           `gorm:"column:received_at;not null;index" json:"received_at"`
	Description   string              `gorm:"column:description;size:255" json:"description"`
	Comments      string              `gorm:"column:comments;size:512" json:"comments"`
	BookingID     *uuid.UUID          `gorm:"column:booking_id;type:uuid" json:"booking_id,omitempty"`
	ActivityID    *uuid.UUID          `gorm:"column:activity_id;type:uuid" json:"activity_id,omitempty"`
	CreatedBy     string              `gorm:"column:created_by;size:128" json:"created_by"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
