package storage

import (
	"errors"
	"path"
	"strings"
)

const photoPrefix = "uploads/photos"

var ErrInvalidKey = errors.New("invalid photo key")

// validKey rejects keys that could escape the photo namespace.
func validKey(key string) error {
	if key == "" || key != path.Base(key) || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return ErrInvalidKey
	}
	return nil
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
