package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/casaluna/guesthouse-backend/api/middleware"
	"github.com/casaluna/guesthouse-backend/api/responses"
	"github.com/casaluna/guesthouse-backend/api/validators"
	"github.com/casaluna/guesthouse-backend/internal/incomes"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
	"github.com/casaluna/guesthouse-backend/pkg/pagination"
)

// IncomeRequest is the transport shape for creating or replacing an income.
type IncomeRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Category      string          `json:"category" validate:"required,max=64"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	ReceivedAt    time.Time       `json:"received_at" validate:"required"`
	Description   string          `json:"description" validate:"max=255"`
	Comments      string          `json:"comments" validate:"max=512"`
	BookingID     *uuid.UUID      `json:"booking_id,omitempty"`
	ActivityID    *uuid.UUID      `json:"activity_id,omitempty"`
}

func (b IncomeRequest) toInput() incomes.Input {
	return incomes.Input{
		Amount:        b.Amount,
		Category:      validators.SanitizeString(b.Category, 64),
		PaymentMethod: b.PaymentMethod,
		ReceivedAt:    b.ReceivedAt,
		Description:   validators.SanitizeString(b.Description, 255),
		Comments:      validators.SanitizeString(b.Comments, 512),
		BookingID:     b.BookingID,
		ActivityID:    b.ActivityID,
	}
}

func IncomeCreate(svc incomes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body IncomeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		income, err := svc.Create(r.Context(), body.toInput(), middleware.UserNameFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, income)
	}
}

func IncomeUpdate(svc incomes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "incomeId"), "incomeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body IncomeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		income, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, income)
	}
}

func IncomeDelete(svc incomes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "incomeId"), "incomeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func IncomeDetail(svc incomes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "incomeId"), "incomeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		income, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, income)
	}
}

func IncomeList(svc incomes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, cursor, limit, err := parseEntryQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filter, cursor, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next := ""
		if len(list) == limit {
			last := list[len(list)-1]
			next = pagination.EncodeCursor(pagination.Cursor{OccurredAt: last.ReceivedAt, ID: last.ID})
		}
		responses.WriteSuccess(w, map[string]any{
			"incomes":     list,
			"next_cursor": next,
		})
	}
}
