// Package domain defines the asset record, its access analytics and the errors
// shared by every layer of the asset pipeline.
//
// An asset is immutable once ingested: its content, envelope and ownership never
// change. Only the blob URL (backfilled after upload) and the analytics counters
// are ever updated.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/assetvault/internal/crypto/domain"
)

// Asset is one stored, encrypted piece of content and its descriptive metadata.
type Asset struct {
	// ID is the UUIDv7 assigned at ingestion; it is the record part of the content id.
	ID uuid.UUID
	// ProductID is the ledger product a buyer must have paid for.
	ProductID string
	// Owner is the creator's address. The owner can always decrypt.
	Owner       string
	Title       string
	Description string
	// OriginalFilename is the uploaded file name, used for blob naming and downloads.
	OriginalFilename string
	// BlobURL is empty until the encrypted bytes have been uploaded.
	BlobURL  string
	MimeType string
	// FileSize is the plaintext size in bytes.
	FileSize   int64
	Encryption cryptoDomain.EncryptionEnvelope
	Analytics  Analytics
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Analytics holds the access counters kept per asset.
type Analytics struct {
	TotalChats     int64
	TotalDownloads int64
	LastAccessedAt *time.Time
}

// HasBlob reports whether the encrypted content has been uploaded and linked.
func (a *Asset) HasBlob() bool {
	return a.BlobURL != ""
}
