package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BucketStore is a Store over a gocloud.dev bucket.
//
// Supported bucket URLs: mem:// (tests), file:///path (single node) and
// s3://bucket?region=... (any S3-compatible service).
type BucketStore struct {
	bucket    *blob.Bucket
	publicURL string
	timeout   time.Duration
}

// OpenBucketStore opens bucketURL. When publicURL is empty, object URLs are built
// from the bucket URL itself (without its query string).
func OpenBucketStore(ctx context.Context, bucketURL, publicURL string, timeout time.Duration) (*BucketStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}

	if publicURL == "" {
		publicURL, _, _ = strings.Cut(bucketURL, "?")
	}

	return NewBucketStore(bucket, publicURL, timeout), nil
}

// NewBucketStore wraps an already opened bucket.
func NewBucketStore(bucket *blob.Bucket, publicURL string, timeout time.Duration) *BucketStore {
	return &BucketStore{
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		timeout:   timeout,
	}
}

// Upload writes data under name.
func (s *BucketStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	err := s.bucket.WriteAll(ctx, name, data, &blob.WriterOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", classifyBucketError(err, "upload")
	}

	return s.publicURL + "/" + name, nil
}

// Fetch reads the object behind url.
func (s *BucketStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	key, err := keyFromURL(s.publicURL, url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, classifyBucketError(err, "fetch")
	}
	return data, nil
}

// Delete removes the object behind url.
func (s *BucketStore) Delete(ctx context.Context, url string) error {
	key, err := keyFromURL(s.publicURL, url)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.bucket.Delete(ctx, key); err != nil {
		return classifyBucketError(err, "delete")
	}
	return nil
}

// Close releases the bucket.
func (s *BucketStore) Close() error {
	return s.bucket.Close()
}

func classifyBucketError(err error, operation string) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %s", assetsDomain.ErrBlobNotFound, operation)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out", assetsDomain.ErrTransfer, operation)
	}
	return fmt.Errorf("%w: %s: %v", assetsDomain.ErrTransfer, operation, err)
}
