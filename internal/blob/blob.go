// Package blob stores encrypted asset bytes in object storage and fetches them back
// by URL. Two backends are provided: BucketStore over gocloud.dev/blob (memory, local
// files, S3-compatible URLs) and S3Store over the AWS SDK.
//
// Stores never retry. A missing object is reported as ErrBlobNotFound and every other
// failure as ErrTransfer, so callers can tell "gone" from "broken".
package blob

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// ObjectPrefix is the key prefix under which all encrypted assets are stored.
const ObjectPrefix = "encrypted-assets"

// Store is a blob backend.
type Store interface {
	// Upload writes data under name and returns the URL the object can be fetched by.
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, url string) error
	Close() error
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied file name to a safe single path segment.
func SanitizeFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "asset"
	}
	return name
}

// ObjectName returns "encrypted-assets/<assetID>/<filename>.enc".
func ObjectName(assetID, filename string) string {
	return fmt.Sprintf("%s/%s/%s.enc", ObjectPrefix, assetID, SanitizeFilename(filename))
}

// keyFromURL strips the store's public base from url.
func keyFromURL(baseURL, url string) (string, error) {
	key, ok := strings.CutPrefix(url, baseURL+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: url %q does not belong to this store", assetsDomain.ErrTransfer, url)
	}
	return key, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
