package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/NaufalH27/inquran-be/internal/http/request"
	"github.com/NaufalH27/inquran-be/internal/http/response"
	"github.com/NaufalH27/inquran-be/internal/service"
)

const msgInternal = "Internal server error"

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// unrecognized is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *request.ValidationError
		authErr *service.AuthenticationError
		maxErr  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		response.Error(w, r, http.StatusBadRequest, "validation failed", verr.Errors)
	case errors.Is(err, service.ErrUnsupportedPhotoType):
		response.Error(w, r, http.StatusBadRequest, "validation failed", []request.FieldError{{Field: "photo", Message: err.Error()}})
	case errors.As(err, &maxErr):
		response.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large", nil)
	case errors.As(err, &authErr):
		response.Error(w, r, http.StatusUnauthorized, authErr.Message, nil)
	case errors.Is(err, service.ErrConflict):
		response.Error(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		response.Error(w, r, http.StatusNotFound, err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		response.Error(w, r, http.StatusInternalServerError, msgInternal, nil)
	}
}

func validationError(errs []request.FieldError) error {
	return &request.ValidationError{Errors: errs}
}
