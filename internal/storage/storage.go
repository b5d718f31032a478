// Package storage keeps uploaded product images, either on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxGalleryImages caps a single gallery upload.
const MaxGalleryImages = 10

var ErrUnsupportedType = errors.New("storage: unsupported image type")

// Store persists one object and returns where it can be fetched from. A
// location starting with "/" is relative to the serving host, see Resolve.
// Delete removes a stored object by name; a missing object is not an error.
type Store interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Extension maps an accepted image content type to the extension used on disk.
func Extension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := extensions[ct]
	if !ok {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newULID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(t), entropy).String())
}

// FileName builds "<original-name-with-dashes>-<ulid>.<ext>" from the client's
// file name, dropping any directory part and the client's own extension.
func FileName(original, ext string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return base + "-" + newULID(time.Now().UTC()) + "." + ext
}

// Resolve turns a host-relative location into an absolute URL using baseURL
// (scheme://host). Absolute locations are returned unchanged.
func Resolve(baseURL, location string) string {
	if !strings.HasPrefix(location, "/") {
		return location
	}
	return strings.TrimRight(baseURL, "/") + location
}
