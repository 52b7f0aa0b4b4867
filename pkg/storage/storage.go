// Package storage defines the object store the upload service writes to.
// Drivers live in sub-packages (local, gcs).
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidObjectName is returned for names that are empty or escape the store root.
var ErrInvalidObjectName = errors.New("invalid object name")

// Store persists uploaded objects and returns the public URL for them.
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Ping(ctx context.Context) error
}

// CleanObjectName validates a flat object name such as "1700000000000-ab12cd.png".
func CleanObjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name != path.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidObjectName
	}
	return name, nil
}
