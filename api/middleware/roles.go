package middleware

import (
	"net/http"

	"github.com/casaluna/guesthouse-backend/api/responses"
	"github.com/casaluna/guesthouse-backend/pkg/enums"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
	"github.com/casaluna/guesthouse-backend/pkg/logger"
)

// RequireLedgerManager gates period closing and entry deletion behind the
// admin/manager roles.
func RequireLedgerManager(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := enums.UserRole(RoleFromContext(r.Context()))
			if !role.CanManageLedger() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "a manager role is required for this operation"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
