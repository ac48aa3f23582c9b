// Package storage provides the pluggable byte-storage backends behind the
// object catalog. Exactly one backend is active per deployment, selected by
// configuration at startup and injected into the request path.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"drs/internal/streaming"
)

// Backend kinds selectable via configuration.
const (
	KindLocal = "local"
	KindS3    = "s3"
)

// ErrNotImplemented reports an operation the active backend does not
// support, such as sub-range reads against an object store.
var ErrNotImplemented = errors.New("operation not implemented by storage backend")

// InvalidLocationError reports a location pointer that cannot be resolved by
// the backend, either because it is unparseable or because it escapes the
// backend's root. It signals a backend misconfiguration, not caller input.
type InvalidLocationError struct {
	Location string
	Reason   string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location %q: %s", e.Location, e.Reason)
}

// Backend persists and retrieves object bytes.
//
// Save copies the file at sourcePath to a backend-chosen destination under
// targetName and returns the canonical location pointer. Delete removes the
// bytes at a location. Stream returns a single-pass reader over the object,
// positioned at rng.Start when a range is given; the caller bounds the read
// at rng.End and closes the reader on every exit path.
type Backend interface {
	Save(ctx context.Context, sourcePath, targetName string) (string, error)
	Delete(ctx context.Context, location string) error
	Stream(ctx context.Context, location string, rng *streaming.ByteRange) (io.ReadCloser, error)
}

// Config selects and parameterizes the active backend.
type Config struct {
	Kind    string
	DataDir string
	S3      S3Options
}

// New builds the backend named by cfg.Kind.
func New(cfg Config) (Backend, error) {
	switch cfg.Kind {
	case KindLocal:
		return NewLocal(cfg.DataDir)
	case KindS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Kind)
	}
}
