package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casaluna/guesthouse-backend/pkg/enums"
)

// Expense records money spent. Balance carries the petty-cash balance as it
// stood right after this mutation committed, kept as an audit trail; the
// authoritative balance is always reconstructed from closes plus deltas.
type Expense struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Category      string              `gorm:"column:category;size:64;not null" json:"category"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	PurchasedAt   time.Time           `gorm:"column:purchased_at;not null;index" json:"purchased_at"`
	PurchasedBy   string              `gorm:"column:purchased_by;size:128;not null" json:"purchased_by"`
	Description   string              `gorm:"column:description;size:255" json:"description"`
	Comments      string              `gorm:"column:comments;size:512" json:"comments"`
	PhotoURL      string              `gorm:"column:photo_url;size:512" json:"photo_url"`
	FileName      string              `gorm:"column:file_name;size:255" json:"file_name"`
	Balance       decimal.Decimal     `gorm:"column:balance;type:numeric(14,2)" json:"balance"`
	CreatedBy     string              `gorm:"column:created_by;size:128" json:"created_by"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
