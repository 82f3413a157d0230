package entries

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casaluna/guesthouse-backend/pkg/enums"
)

// Filter narrows entry queries. After is an inclusive lower bound and Before
// an exclusive upper bound on the entry's occurred-at column; balance
// reconstruction depends on exactly these bound semantics so that a close at
// instant T partitions entries into [previous close, T) and [T, next close).
type Filter struct {
	After           *time.Time
	Before          *time.Time
	PaymentMethod   enums.PaymentMethod
	Category        string
	ExcludeCategory string
	BookingID       *uuid.UUID
}

// Apply adds the filter's conditions to the query. timeColumn names the
// occurred-at column of the underlying table (received_at or purchased_at).
func (f Filter) Apply(q *gorm.DB, timeColumn string) *gorm.DB {
	if f.After != nil {
		q = q.Where(timeColumn+" >= ?", *f.After)
	}
	if f.Before != nil {
		q = q.Where(timeColumn+" < ?", *f.Before)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ExcludeCategory != "" {
		q = q.Where("category <> ?", f.ExcludeCategory)
	}
	if f.BookingID != nil {
		q = q.Where("booking_id = ?", *f.BookingID)
	}
	return q
}
