package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerClose is an immutable checkpoint of the petty-cash balance at the end
// of an accounting period. Rows are append-only: no update or delete path
// exists anywhere in the codebase, and balance queries only ever read the
// latest one.
type LedgerClose struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ClosedAt  time.Time       `gorm:"column:closed_at;not null;uniqueIndex" json:"closed_at"`
	Balance   decimal.Decimal `gorm:"column:balance;type:numeric(14,2);not null" json:"balance"`
	CreatedBy string          `gorm:"column:created_by;size:128" json:"created_by"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
