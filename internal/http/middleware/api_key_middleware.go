package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/NaufalH27/inquran-be/internal/http/response"
)

const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not equal expected.
// With bypass set every request passes.
func APIKey(expected string, bypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if bypass {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				response.Error(w, r, http.StatusUnauthorized, "Invalid API key", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
