package dto

import (
	"time"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

// IngestResponse reports an ingestion. Error is only set when Success is false.
type IngestResponse struct {
	AssetID        string `json:"asset_id"`
	ContentID      string `json:"content_id"`
	BlobURL        string `json:"blob_url,omitempty"`
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	RetryScheduled bool   `json:"retry_scheduled,omitempty"`
}

// MapIngestResultToResponse converts a pipeline result to an API response.
func MapIngestResultToResponse(result *assetsDomain.IngestResult) IngestResponse {
	return IngestResponse{
		AssetID:        result.AssetID.String(),
		ContentID:      result.ContentID,
		BlobURL:        result.BlobURL,
		Success:        result.Success,
		Message:        result.Message,
		Error:          result.Error,
		RetryScheduled: result.RetryScheduled,
	}
}

// AnalyticsResponse carries the access counters of an asset.
type AnalyticsResponse struct {
	TotalChats     int64      `json:"total_chats"`
	TotalDownloads int64      `json:"total_downloads"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
}

// AssetResponse is the public metadata of an asset. Envelope and blob location
// are never exposed.
type AssetResponse struct {
	AssetID     string            `json:"asset_id"`
	ContentID   string            `json:"content_id"`
	ProductID   string            `json:"product_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Owner       string            `json:"owner"`
	MimeType    string            `json:"mime_type"`
	FileSize    int64             `json:"file_size"`
	Analytics   AnalyticsResponse `json:"analytics"`
	CreatedAt   time.Time         `json:"created_at"`
}

// MapAssetToResponse converts a domain asset to its metadata response.
func MapAssetToResponse(asset *assetsDomain.Asset, contentID string) AssetResponse {
	return AssetResponse{
		AssetID:     asset.ID.String(),
		ContentID:   contentID,
		ProductID:   asset.ProductID,
		Title:       asset.Title,
		Description: asset.Description,
		Owner:       asset.Owner,
		MimeType:    asset.MimeType,
		FileSize:    asset.FileSize,
		Analytics: AnalyticsResponse{
			TotalChats:     asset.Analytics.TotalChats,
			TotalDownloads: asset.Analytics.TotalDownloads,
			LastAccessedAt: asset.Analytics.LastAccessedAt,
		},
		CreatedAt: asset.CreatedAt,
	}
}

// ListAssetsResponse represents a paginated list of assets.
type ListAssetsResponse struct {
	Data []AssetResponse `json:"data"`
}

// MapAssetsToListResponse converts assets to a list response. contentID builds
// the content identifier of each asset.
func MapAssetsToListResponse(
	assets []*assetsDomain.Asset,
	contentID func(*assetsDomain.Asset) string,
) ListAssetsResponse {
	data := make([]AssetResponse, 0, len(assets))
	for _, asset := range assets {
		data = append(data, MapAssetToResponse(asset, contentID(asset)))
	}

	return ListAssetsResponse{
		Data: data,
	}
}

// ChatResponse is the analyzer's answer.
type ChatResponse struct {
	Response string `json:"response"`
}
