package middleware

import (
	"net/http"
	"strings"

	"github.com/discope/discope-backend/api/responses"
	pkgAuth "github.com/discope/discope-backend/pkg/auth"
	"github.com/discope/discope-backend/pkg/config"
	pkgerrors "github.com/discope/discope-backend/pkg/errors"
	"github.com/discope/discope-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the user
// and the groups it belongs to.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithGroups(ctx, claims.Groups)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
				if claims.Login != "" {
					ctx = logg.WithField(ctx, "login", claims.Login)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
