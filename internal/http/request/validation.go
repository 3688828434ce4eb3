package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any service is called.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator is implemented by every JSON request body.
type Validator interface {
	Validate() []FieldError
}

type normalizer interface {
	Normalize()
}

// Decode reads a JSON body into dst, normalizes it and runs its validation.
// Unknown fields are rejected.
func Decode(r *http.Request, dst Validator) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ValidationError{Errors: []FieldError{{Field: "body", Message: "request body is required"}}}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &ValidationError{Errors: []FieldError{{Field: typeErr.Field, Message: "has an invalid type"}}}
		}
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return &ValidationError{Errors: []FieldError{{Field: strings.Trim(name, `"`), Message: "is not allowed"}}}
		}
		return &ValidationError{Errors: []FieldError{{Field: "body", Message: "malformed JSON"}}}
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if errs := dst.Validate(); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	passwordPattern = regexp.MustCompile(`^[A-Za-z\d]+$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-ZÀ-ÖØ-öø-ÿ\s'-]+$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
)

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, format string, args ...any) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fe *fieldErrors) required(field, v string) bool {
	if v == "" {
		fe.add(field, "is required")
		return false
	}
	return true
}

func (fe *fieldErrors) length(field, v string, min, max int) bool {
	n := utf8.RuneCountInString(v)
	if n < min || n > max {
		fe.add(field, "must be between %d and %d characters", min, max)
		return false
	}
	return true
}

func (fe *fieldErrors) maxLength(field, v string, max int) bool {
	if utf8.RuneCountInString(v) > max {
		fe.add(field, "must be at most %d characters", max)
		return false
	}
	return true
}

func (fe *fieldErrors) username(field, v string) {
	if !fe.required(field, v) || !fe.length(field, v, 2, 50) {
		return
	}
	if !usernamePattern.MatchString(v) {
		fe.add(field, "may contain only letters, digits and underscores")
	}
}

func (fe *fieldErrors) email(field, v string) {
	if !fe.required(field, v) || !fe.maxLength(field, v, 254) {
		return
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || addr.Name != "" {
		fe.add(field, "must be a valid email address")
	}
}

func (fe *fieldErrors) password(field, v string) {
	if !fe.required(field, v) || !fe.length(field, v, 8, 60) {
		return
	}
	if !passwordPattern.MatchString(v) || !hasLetter.MatchString(v) || !hasDigit.MatchString(v) {
		fe.add(field, "must contain letters and digits only, with at least one of each")
	}
}

func (fe *fieldErrors) fullName(field, v string) {
	if !fe.required(field, v) || !fe.length(field, v, 2, 100) {
		return
	}
	if !fullNamePattern.MatchString(v) {
		fe.add(field, "may contain only letters, spaces, apostrophes and hyphens")
	}
}

// ParsePage reads page and page_size query parameters. Absent values are 0
// and get defaulted by the repository.
func ParsePage(r *http.Request) (page, pageSize int, err error) {
	var errs fieldErrors
	parse := func(name string) int {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			return 0
		}
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 1 {
			errs.add(name, "must be a positive integer")
			return 0
		}
		return n
	}
	page = parse("page")
	pageSize = parse("page_size")
	if len(errs) > 0 {
		return 0, 0, &ValidationError{Errors: errs}
	}
	return page, pageSize, nil
}
