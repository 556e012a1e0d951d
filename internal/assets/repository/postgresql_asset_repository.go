package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgreSQLAssetRepository implements asset persistence for PostgreSQL.
type PostgreSQLAssetRepository struct {
	db *sql.DB
}

// NewPostgreSQLAssetRepository creates a new PostgreSQL asset repository.
func NewPostgreSQLAssetRepository(db *sql.DB) *PostgreSQLAssetRepository {
	return &PostgreSQLAssetRepository{db: db}
}

// Create inserts a new asset record. A duplicate id yields ErrDuplicateID.
func (p *PostgreSQLAssetRepository) Create(ctx context.Context, asset *assetsDomain.Asset) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO assets (` + assetColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	_, err := querier.ExecContext(ctx, query, assetValues(asset, asset.ID)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return assetsDomain.ErrDuplicateID
		}
		return apperrors.Wrap(err, "failed to create asset")
	}
	return nil
}

// GetByID returns the asset record with the given id.
func (p *PostgreSQLAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	var assetID uuid.UUID
	asset, err := scanAsset(querier.QueryRowContext(ctx, query, id), &assetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assetsDomain.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get asset")
	}
	asset.ID = assetID

	return asset, nil
}

// UpdateBlobURL links the uploaded blob to the record.
func (p *PostgreSQLAssetRepository) UpdateBlobURL(ctx context.Context, id uuid.UUID, blobURL string) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE assets SET blob_url = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, blobURL, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update asset blob url")
	}
	return requireRow(result)
}

// IncrementCounter atomically increments one analytics counter.
func (p *PostgreSQLAssetRepository) IncrementCounter(
	ctx context.Context,
	id uuid.UUID,
	counter assetsDomain.Counter,
) error {
	column, err := counter.Column()
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(`UPDATE assets SET %[1]s = %[1]s + 1, last_accessed_at = $1 WHERE id = $2`, column)

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return apperrors.Wrap(err, "failed to increment asset counter")
	}
	return requireRow(result)
}

// ListByOwner returns the owner's assets, newest first. Owner matching is case-insensitive.
func (p *PostgreSQLAssetRepository) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + assetColumns + ` FROM assets
			  WHERE LOWER(owner) = LOWER($1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list assets")
	}
	defer rows.Close() //nolint:errcheck

	assets := make([]*assetsDomain.Asset, 0)
	for rows.Next() {
		var assetID uuid.UUID
		asset, err := scanAsset(rows, &assetID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan asset")
		}
		asset.ID = assetID
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate assets")
	}

	return assets, nil
}

// Delete removes the record.
func (p *PostgreSQLAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete asset")
	}
	return requireRow(result)
}

// requireRow maps zero affected rows to ErrAssetNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return assetsDomain.ErrAssetNotFound
	}
	return nil
}
