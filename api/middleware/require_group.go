package middleware

import (
	"net/http"

	"github.com/discope/discope-backend/api/responses"
	pkgAuth "github.com/discope/discope-backend/pkg/auth"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

// RequireGroup lets the request through when the caller belongs to one of the
// allowed groups. Auth must run first.
func RequireGroup(logg *logger.Logger, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if UserIDFromContext(ctx) == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			claims := &pkgAuth.AccessTokenClaims{Groups: GroupsFromContext(ctx)}
			if !claims.InGroup(allowed...) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotAllowed, "missing_group").
					WithDetails(map[string]any{"required": allowed}))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
