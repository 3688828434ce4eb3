package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrDuplicateKey     = errors.New("duplicate key")
)

// DuplicateKeyError reports a unique-constraint violation. Field names the
// colliding column ("username", "email", "google_id") or "favorite".
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	return "duplicate key on " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// constraintFields maps unique index names to the reported field.
var constraintFields = map[string]string{
	"idx_users_username":     "username",
	"idx_users_email":        "email",
	"idx_users_google_id":    "google_id",
	"idx_favorite_user_ayah": "favorite",
}

// columnFields maps the table.column lists sqlite reports to the same fields.
var columnFields = map[string]string{
	"users.username":  "username",
	"users.email":     "email",
	"users.google_id": "google_id",
	"favorites.user_id, favorites.surah_number, favorites.ayah_number": "favorite",
}

const sqliteUniquePrefix = "UNIQUE constraint failed: "

// classifyWriteError turns unique violations into *DuplicateKeyError. The
// field comes from the index name (postgres) or the column list (sqlite),
// never from the offending value.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgerrcode.UniqueViolation {
			return err
		}
		return &DuplicateKeyError{Field: fieldOr(constraintFields, pgErr.ConstraintName), Err: err}
	}
	msg := err.Error()
	i := strings.Index(msg, sqliteUniquePrefix)
	if i < 0 {
		return err
	}
	return &DuplicateKeyError{Field: fieldOr(columnFields, strings.TrimSpace(msg[i+len(sqliteUniquePrefix):])), Err: err}
}

func fieldOr(fields map[string]string, key string) string {
	if f, ok := fields[key]; ok {
		return f
	}
	return "unknown"
}
