package enums

// Income categories are stored as free-form normalized strings so operators
// can introduce new ones without a migration, but the well-known values below
// drive conditional validation and the current-totals query.
const (
	IncomeCategoryGuestPayment   = "guest payment"
	IncomeCategoryCommission     = "commission"
	IncomeCategoryPettyCashTopUp = "petty cash top-up"
	IncomeCategoryOther          = "other"
)
