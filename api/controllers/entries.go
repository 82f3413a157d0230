package controllers

import (
	"net/http"
	"strings"

	"github.com/casaluna/guesthouse-backend/api/validators"
	"github.com/casaluna/guesthouse-backend/internal/entries"
	"github.com/casaluna/guesthouse-backend/pkg/enums"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
	"github.com/casaluna/guesthouse-backend/pkg/pagination"
)

// parseEntryQuery reads the common list parameters shared by the income and
// expense collections: a time window, method/category filters, and keyset
// pagination.
func parseEntryQuery(r *http.Request) (entries.Filter, *pagination.Cursor, int, error) {
	var filter entries.Filter

	after, err := validators.ParseQueryTime(r, "after")
	if err != nil {
		return filter, nil, 0, err
	}
	before, err := validators.ParseQueryTime(r, "before")
	if err != nil {
		return filter, nil, 0, err
	}
	filter.After = after
	filter.Before = before

	if raw := strings.TrimSpace(r.URL.Query().Get("payment_method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return filter, nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cash, transfer or card")
		}
		filter.PaymentMethod = method
	}
	filter.Category = strings.ToLower(validators.SanitizeString(r.URL.Query().Get("category"), 64))

	bookingID, err := validators.ParseQueryUUID(r, "booking_id")
	if err != nil {
		return filter, nil, 0, err
	}
	filter.BookingID = bookingID

	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return filter, nil, 0, err
	}

	var cursor *pagination.Cursor
	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		cursor, err = pagination.ParseCursor(raw)
		if err != nil {
			return filter, nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid pagination cursor")
		}
	}

	return filter, cursor, limit, nil
}
