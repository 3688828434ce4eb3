package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit records one auth outcome (auth.login, auth.register, auth.google,
// auth.refresh, auth.logout) on the default logger. Records whose "outcome"
// attr is "failure" are written at WARN so they survive LOG_LEVEL=warn.
// attrs must never carry passwords, raw refresh tokens or hashes.
func Audit(r *http.Request, event string, attrs ...any) {
	level := slog.LevelInfo
	if auditOutcome(attrs) == "failure" {
		level = slog.LevelWarn
	}
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	slog.Log(r.Context(), level, "audit", append(base, attrs...)...)
}

func auditOutcome(attrs []any) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == "outcome" {
			v, _ := attrs[i+1].(string)
			return v
		}
	}
	return ""
}
