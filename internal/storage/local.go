package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"drs/internal/streaming"
)

// Local stores object bytes as flat files under a configured root directory.
type Local struct {
	root string
}

// NewLocal creates a local backend rooted at root, creating it if needed.
func NewLocal(root string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local backend root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

// Save copies the file at sourcePath into the root under targetName and
// returns the absolute destination path. The copy goes through a temp file
// renamed into place, so a failed save never leaves a partial object at the
// final location.
func (l *Local) Save(ctx context.Context, sourcePath, targetName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(l.root, ".save-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	dst := filepath.Join(l.root, targetName)
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return dst, nil
}

// Delete removes the bytes at location. The resolved target must be a strict
// subpath of the backend root; anything else fails rather than touching
// files the backend does not own.
func (l *Local) Delete(ctx context.Context, location string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := l.resolve(location)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Stream opens the file at location, seeking to rng.Start when a range is
// given. The returned reader is not bounded at rng.End; the streaming copy
// enforces that.
func (l *Local) Stream(ctx context.Context, location string, rng *streaming.ByteRange) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}

func (l *Local) resolve(location string) (string, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", &InvalidLocationError{Location: location, Reason: err.Error()}
	}
	rel, err := filepath.Rel(l.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &InvalidLocationError{Location: location, Reason: "not a subpath of the backend root"}
	}
	return abs, nil
}
