package domain

import (
	"github.com/allisson/assetvault/internal/errors"
)

// Asset pipeline error definitions.
var (
	// ErrAssetNotFound indicates no record exists for the requested asset id.
	ErrAssetNotFound = errors.Wrap(errors.ErrNotFound, "asset not found")

	// ErrBlobNotFound indicates the encrypted object is missing from the blob store.
	ErrBlobNotFound = errors.Wrap(errors.ErrNotFound, "encrypted content not found")

	// ErrDuplicateID indicates a record with the same id already exists.
	ErrDuplicateID = errors.Wrap(errors.ErrConflict, "asset id already exists")

	// ErrInvalidCounter indicates an analytics counter name that is not recognized.
	ErrInvalidCounter = errors.Wrap(errors.ErrInvalidInput, "invalid analytics counter")

	// ErrInvalidVerificationTarget indicates there is no usable product id to verify
	// payment against (empty or the "temp" placeholder).
	ErrInvalidVerificationTarget = errors.Wrap(errors.ErrBadRequest, "no valid product id to verify")

	// ErrUnauthorized indicates the requester neither owns the asset nor paid for it.
	ErrUnauthorized = errors.Wrap(errors.ErrForbidden, "requester has not purchased this asset")

	// ErrVerificationUnavailable indicates the ledger could not be queried. It is never
	// reported as a denial.
	ErrVerificationUnavailable = errors.Wrap(errors.ErrUnavailable, "payment verification unavailable")

	// ErrTransfer indicates the blob store failed for a reason other than a missing object.
	ErrTransfer = errors.Wrap(errors.ErrBadGateway, "blob transfer failed")

	// ErrAnalyzerUnavailable indicates the content analysis collaborator is not configured
	// or failed to answer.
	ErrAnalyzerUnavailable = errors.Wrap(errors.ErrUnavailable, "content analysis unavailable")

	// ErrContentNotLinked indicates the record exists but its encrypted content has not
	// been uploaded yet.
	ErrContentNotLinked = errors.Wrap(errors.ErrNotFound, "encrypted content not yet available")
)
