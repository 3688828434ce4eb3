package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/NaufalH27/inquran-be/internal/http/response"
	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/security"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// AuthMiddleware requires a valid bearer access token and stores its claims
// in the request context.
func AuthMiddleware(jwtMgr *security.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				observability.RecordAccessTokenValidation(r.Context(), "missing")
				response.Error(w, r, http.StatusUnauthorized, "missing access token", nil)
				return
			}
			claims, err := jwtMgr.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "invalid")
				response.Error(w, r, http.StatusUnauthorized, "invalid access token", nil)
				return
			}
			observability.RecordAccessTokenValidation(r.Context(), "valid")
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}
