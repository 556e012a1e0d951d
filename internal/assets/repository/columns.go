// Package repository implements asset record persistence for PostgreSQL, MySQL and SQLite.
package repository

import (
	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
)

const assetColumns = `id, product_id, owner, title, description, original_filename, blob_url,
	mime_type, file_size, encryption_algorithm, wrapped_key, iv, auth_tag, key_version,
	total_chats, total_downloads, last_accessed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAsset scans one row selected with assetColumns. id receives the raw id column
// so each driver can decode its own representation.
func scanAsset(row rowScanner, id any) (*assetsDomain.Asset, error) {
	var asset assetsDomain.Asset
	err := row.Scan(
		id,
		&asset.ProductID,
		&asset.Owner,
		&asset.Title,
		&asset.Description,
		&asset.OriginalFilename,
		&asset.BlobURL,
		&asset.MimeType,
		&asset.FileSize,
		&asset.Encryption.Algorithm,
		&asset.Encryption.WrappedKey,
		&asset.Encryption.IV,
		&asset.Encryption.AuthTag,
		&asset.Encryption.KeyVersion,
		&asset.Analytics.TotalChats,
		&asset.Analytics.TotalDownloads,
		&asset.Analytics.LastAccessedAt,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func assetValues(asset *assetsDomain.Asset, id any) []any {
	return []any{
		id,
		asset.ProductID,
		asset.Owner,
		asset.Title,
		asset.Description,
		asset.OriginalFilename,
		asset.BlobURL,
		asset.MimeType,
		asset.FileSize,
		asset.Encryption.Algorithm,
		asset.Encryption.WrappedKey,
		asset.Encryption.IV,
		asset.Encryption.AuthTag,
		asset.Encryption.KeyVersion,
		asset.Analytics.TotalChats,
		asset.Analytics.TotalDownloads,
		asset.Analytics.LastAccessedAt,
		asset.CreatedAt,
		asset.UpdatedAt,
	}
}
