package controllers

import (
	"net/http"
	"time"

	"github.com/casaluna/guesthouse-backend/api/middleware"
	"github.com/casaluna/guesthouse-backend/api/responses"
	"github.com/casaluna/guesthouse-backend/api/validators"
	"github.com/casaluna/guesthouse-backend/internal/ledger"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
)

// LedgerBalance returns the reconstructed petty-cash balance, optionally at a
// historical instant via ?as_of=.
func LedgerBalance(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := validators.ParseQueryTime(r, "as_of")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), asOf)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"balance": balance}
		if asOf != nil {
			payload["as_of"] = asOf.UTC().Format(time.RFC3339)
		}
		responses.WriteSuccess(w, payload)
	}
}

// LedgerCloseRequest carries the period boundary to checkpoint at.
type LedgerCloseRequest struct {
	ClosedAt time.Time `json:"closed_at" validate:"required"`
}

func LedgerClosePeriod(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body LedgerCloseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		closed, err := svc.ClosePeriod(r.Context(), body.ClosedAt, middleware.UserNameFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, closed)
	}
}

// LedgerTotals reports the income and expense accumulated in the open period.
func LedgerTotals(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := svc.CurrentTotals(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

// LedgerLastClose returns the latest checkpoint, or null when no period has
// been closed yet.
func LedgerLastClose(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last, err := svc.LastClose(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"last_close": last})
	}
}
