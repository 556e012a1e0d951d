package domain

import (
	"github.com/google/uuid"

	"github.com/allisson/assetvault/internal/errors"
)

// IngestInput is an uploaded file and its descriptive metadata.
type IngestInput struct {
	Data     []byte
	Filename string
	// MimeType is sniffed from Data when empty or generic.
	MimeType    string
	ProductID   string
	Owner       string
	Title       string
	Description string
}

// Validate checks the input fields the pipeline relies on.
func (i IngestInput) Validate() error {
	switch {
	case len(i.Data) == 0:
		return errors.Wrap(errors.ErrInvalidInput, "file is empty")
	case i.ProductID == "":
		return errors.Wrap(errors.ErrInvalidInput, "product id is required")
	case i.Owner == "":
		return errors.Wrap(errors.ErrInvalidInput, "owner is required")
	case i.Title == "":
		return errors.Wrap(errors.ErrInvalidInput, "title is required")
	}
	return nil
}

// IngestResult reports the outcome of an ingestion.
//
// When Success is false the record exists without a blob URL; ContentID is still
// usable for metadata lookups and the upload can be retried without re-encrypting.
type IngestResult struct {
	AssetID   uuid.UUID
	ContentID string
	BlobURL   string
	Success   bool
	Message   string
	Error     string
	// RetryScheduled is true when a background upload retry was queued.
	RetryScheduled bool
}

// DownloadInput identifies the asset and the requester asking to decrypt it.
type DownloadInput struct {
	ContentID string
	Requester string
	// ProductID overrides the asset's product id for the payment check.
	ProductID string
}

// DownloadResult is decrypted content ready to be written to the caller.
type DownloadResult struct {
	Plaintext []byte
	MimeType  string
	Filename  string
	Asset     *Asset
}

// ChatInput is a question about an asset's content.
type ChatInput struct {
	ContentID string
	Message   string
}

// ChatResult is the analyzer's answer.
type ChatResult struct {
	Response string
	AssetID  uuid.UUID
}
