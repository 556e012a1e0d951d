// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	customValidation "github.com/allisson/assetvault/internal/validation"
)

// IngestRequest holds the text fields of a multipart asset upload. The file part
// is read separately by the handler.
type IngestRequest struct {
	ProductID   string `form:"product_id" json:"product_id"`
	Owner       string `form:"owner" json:"owner"`
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

// Validate checks if the ingest request is valid.
func (r *IngestRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProductID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.ProductID,
		),
		validation.Field(&r.Owner,
			validation.Required,
			customValidation.Address,
		),
		validation.Field(&r.Title,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Description,
			validation.Length(0, 4096),
		),
	)
}

// ToInput converts the request and the uploaded file into a pipeline input.
func (r *IngestRequest) ToInput(data []byte, filename, mimeType string) assetsDomain.IngestInput {
	return assetsDomain.IngestInput{
		Data:        data,
		Filename:    filename,
		MimeType:    mimeType,
		ProductID:   strings.TrimSpace(r.ProductID),
		Owner:       r.Owner,
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
	}
}

// DownloadRequest asks to decrypt an asset on behalf of requester_address.
type DownloadRequest struct {
	ContentID        string `json:"content_id"`
	RequesterAddress string `json:"requester_address"`
	// ProductID optionally overrides the product checked against the ledger.
	ProductID string `json:"product_id,omitempty"`
}

// Validate checks if the download request is valid.
func (r *DownloadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ContentID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.RequesterAddress,
			validation.Required,
			customValidation.Address,
		),
		validation.Field(&r.ProductID,
			customValidation.ProductID,
		),
	)
}

// ToInput converts the request into a pipeline input.
func (r *DownloadRequest) ToInput() assetsDomain.DownloadInput {
	return assetsDomain.DownloadInput{
		ContentID: r.ContentID,
		Requester: r.RequesterAddress,
		ProductID: r.ProductID,
	}
}

// ChatRequest asks a question about an asset's content.
type ChatRequest struct {
	ContentID string `json:"content_id"`
	Message   string `json:"message"`
}

// Validate checks if the chat request is valid.
func (r *ChatRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ContentID,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.Message,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 8192),
		),
	)
}

// ToInput converts the request into a pipeline input.
func (r *ChatRequest) ToInput() assetsDomain.ChatInput {
	return assetsDomain.ChatInput{
		ContentID: r.ContentID,
		Message:   r.Message,
	}
}

// ListAssetsRequest filters assets by creator.
type ListAssetsRequest struct {
	Owner string `form:"owner" json:"owner"`
}

// Validate checks if the list request is valid.
func (r *ListAssetsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Owner,
			validation.Required,
			customValidation.Address,
		),
	)
}
