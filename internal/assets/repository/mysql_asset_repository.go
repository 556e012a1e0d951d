package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// MySQLAssetRepository implements asset persistence for MySQL. Ids are stored as BINARY(16).
type MySQLAssetRepository struct {
	db *sql.DB
}

// NewMySQLAssetRepository creates a new MySQL asset repository.
func NewMySQLAssetRepository(db *sql.DB) *MySQLAssetRepository {
	return &MySQLAssetRepository{db: db}
}

// Create inserts a new asset record. A duplicate id yields ErrDuplicateID.
func (m *MySQLAssetRepository) Create(ctx context.Context, asset *assetsDomain.Asset) error {
	querier := database.GetTx(ctx, m.db)

	id, err := asset.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal asset id")
	}

	query := `INSERT INTO assets (` + assetColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, assetValues(asset, id)...)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return assetsDomain.ErrDuplicateID
		}
		return apperrors.Wrap(err, "failed to create asset")
	}
	return nil
}

// GetByID returns the asset record with the given id.
func (m *MySQLAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal asset id")
	}

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ?`

	var rawID []byte
	asset, err := scanAsset(querier.QueryRowContext(ctx, query, binID), &rawID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assetsDomain.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get asset")
	}

	if err := asset.ID.UnmarshalBinary(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal asset id")
	}

	return asset, nil
}

// UpdateBlobURL links the uploaded blob to the record.
func (m *MySQLAssetRepository) UpdateBlobURL(ctx context.Context, id uuid.UUID, blobURL string) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal asset id")
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE assets SET blob_url = ?, updated_at = ? WHERE id = ?`,
		blobURL,
		time.Now().UTC(),
		binID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update asset blob url")
	}
	return requireRow(result)
}

// IncrementCounter atomically increments one analytics counter.
func (m *MySQLAssetRepository) IncrementCounter(
	ctx context.Context,
	id uuid.UUID,
	counter assetsDomain.Counter,
) error {
	column, err := counter.Column()
	if err != nil {
		return err
	}

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal asset id")
	}

	querier := database.GetTx(ctx, m.db)

	query := fmt.Sprintf(`UPDATE assets SET %[1]s = %[1]s + 1, last_accessed_at = ? WHERE id = ?`, column)

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), binID)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment asset counter")
	}
	return requireRow(result)
}

// ListByOwner relies on the case-insensitive utf8mb4_unicode_ci collation of owner.
func (m *MySQLAssetRepository) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + assetColumns + ` FROM assets
			  WHERE owner = ?
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list assets")
	}
	defer rows.Close() //nolint:errcheck

	assets := make([]*assetsDomain.Asset, 0)
	for rows.Next() {
		var rawID []byte
		asset, err := scanAsset(rows, &rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan asset")
		}
		if err := asset.ID.UnmarshalBinary(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal asset id")
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate assets")
	}

	return assets, nil
}

// Delete removes the record.
func (m *MySQLAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	binID, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal asset id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, binID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete asset")
	}
	return requireRow(result)
}
