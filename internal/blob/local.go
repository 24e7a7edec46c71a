package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local keeps objects as files in Dir. Objects are served by the API under BaseURL.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: baseURL}, nil
}

func (l *Local) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// write to a temp file first so a reader never sees a partial object
	tmp, err := os.CreateTemp(l.Dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(l.Dir, key)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename blob: %w", err)
	}

	return joinURL(l.BaseURL, key), nil
}

// Path returns the file backing key, for serving it.
func (l *Local) Path(key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(l.Dir, key), nil
}
