package response

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const StatusError = "error"

type errorEnvelope struct {
	Status    string      `json:"status"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Error     string      `json:"error"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// JSON writes data as the response body without wrapping it.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes the uniform error envelope. The error field carries the
// status text for the code.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Status:    StatusError,
		Code:      status,
		Message:   message,
		Error:     http.StatusText(status),
		Details:   details,
		RequestID: requestID(r),
	})
}

func requestID(r *http.Request) string {
	if r == nil {
		return ""
	}
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-Id")
}
