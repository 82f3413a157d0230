package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/casaluna/guesthouse-backend/api/middleware"
	"github.com/casaluna/guesthouse-backend/api/responses"
	"github.com/casaluna/guesthouse-backend/api/validators"
	"github.com/casaluna/guesthouse-backend/internal/expenses"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
	"github.com/casaluna/guesthouse-backend/pkg/pagination"
)

// ExpenseRequest is the transport shape for creating or replacing an expense.
type ExpenseRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Category      string          `json:"category" validate:"required,max=64"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	PurchasedAt   time.Time       `json:"purchased_at" validate:"required"`
	PurchasedBy   string          `json:"purchased_by" validate:"required,max=128"`
	Description   string          `json:"description" validate:"required,max=255"`
	Comments      string          `json:"comments" validate:"max=512"`
	PhotoURL      string          `json:"photo_url" validate:"required,url,max=512"`
	FileName      string          `json:"file_name" validate:"max=255"`
}

func (b ExpenseRequest) toInput() expenses.Input {
	return expenses.Input{
		Amount:        b.Amount,
		Category:      validators.SanitizeString(b.Category, 64),
		PaymentMethod: b.PaymentMethod,
		PurchasedAt:   b.PurchasedAt,
		PurchasedBy:   validators.SanitizeString(b.PurchasedBy, 128),
		Description:   validators.SanitizeString(b.Description, 255),
		Comments:      validators.SanitizeString(b.Comments, 512),
		PhotoURL:      validators.SanitizeString(b.PhotoURL, 512),
		FileName:      validators.SanitizeString(b.FileName, 255),
	}
}

func ExpenseCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), body.toInput(), middleware.UserNameFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ExpenseUpdate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body ExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Update(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

func ExpenseDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "expenseId"), "expenseId")
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

func ExpenseDetail(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "expenseId"), "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

func ExpenseList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
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
			next = pagination.EncodeCursor(pagination.Cursor{OccurredAt: last.PurchasedAt, ID: last.ID})
		}
		responses.WriteSuccess(w, map[string]any{
			"expenses":    list,
			"next_cursor": next,
		})
	}
}
