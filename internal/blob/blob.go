// Package blob stores uploaded images and hands back the public URL clients load them from.
package blob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is a write-once object store.
type Store interface {
	// Put writes data under key and returns the object's public URL.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// NewKey derives an object key from the upload time, e.g. "1700000000000-1a2b3c4d.jpg".
// The random suffix keeps two uploads in the same millisecond apart.
func NewKey(t time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%d-%s.%s", t.UTC().UnixMilli(), uuid.NewString()[:8], ext)
}

// ValidKey rejects keys that could escape the store's namespace.
func ValidKey(key string) bool {
	if key == "" || len(key) > 200 {
		return false
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return false
	}
	return true
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
