package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	assetsDomain "github.com/allisson/assetvault/internal/assets/domain"
	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
)

// SQLiteAssetRepository implements asset persistence for SQLite, used for local
// development and single-node deployments. Ids are stored as their string form.
type SQLiteAssetRepository struct {
	db *sql.DB
}

// NewSQLiteAssetRepository creates a new SQLite asset repository.
func NewSQLiteAssetRepository(db *sql.DB) *SQLiteAssetRepository {
	return &SQLiteAssetRepository{db: db}
}

// Create inserts a new asset record. A duplicate id yields ErrDuplicateID.
func (s *SQLiteAssetRepository) Create(ctx context.Context, asset *assetsDomain.Asset) error {
	querier := database.GetTx(ctx, s.db)

	query := `INSERT INTO assets (` + assetColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, assetValues(asset, asset.ID.String())...)
	if err != nil {
		if isSQLiteConstraint(err) {
			return assetsDomain.ErrDuplicateID
		}
		return apperrors.Wrap(err, "failed to create asset")
	}
	return nil
}

// GetByID returns the asset record with the given id.
func (s *SQLiteAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ?`

	var rawID string
	asset, err := scanAsset(querier.QueryRowContext(ctx, query, id.String()), &rawID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, assetsDomain.ErrAssetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get asset")
	}

	if asset.ID, err = uuid.Parse(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse asset id")
	}

	return asset, nil
}

// UpdateBlobURL links the uploaded blob to the record.
func (s *SQLiteAssetRepository) UpdateBlobURL(ctx context.Context, id uuid.UUID, blobURL string) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE assets SET blob_url = ?, updated_at = ? WHERE id = ?`,
		blobURL,
		time.Now().UTC(),
		id.String(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update asset blob url")
	}
	return requireRow(result)
}

// IncrementCounter atomically increments one analytics counter.
func (s *SQLiteAssetRepository) IncrementCounter(
	ctx context.Context,
	id uuid.UUID,
	counter assetsDomain.Counter,
) error {
	column, err := counter.Column()
	if err != nil {
		return err
	}

	querier := database.GetTx(ctx, s.db)

	query := fmt.Sprintf(`UPDATE assets SET %[1]s = %[1]s + 1, last_accessed_at = ? WHERE id = ?`, column)

	result, err := querier.ExecContext(ctx, query, time.Now().UTC(), id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to increment asset counter")
	}
	return requireRow(result)
}

// ListByOwner returns the owner's assets, newest first. Owner matching uses
// COLLATE NOCASE, which folds ASCII case only.
func (s *SQLiteAssetRepository) ListByOwner(
	ctx context.Context,
	owner string,
	offset, limit int,
) ([]*assetsDomain.Asset, error) {
	querier := database.GetTx(ctx, s.db)

	query := `SELECT ` + assetColumns + ` FROM assets
			  WHERE owner = ? COLLATE NOCASE
			  ORDER BY created_at DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list assets")
	}
	defer rows.Close() //nolint:errcheck

	assets := make([]*assetsDomain.Asset, 0)
	for rows.Next() {
		var rawID string
		asset, err := scanAsset(rows, &rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan asset")
		}
		if asset.ID, err = uuid.Parse(rawID); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse asset id")
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate assets")
	}

	return assets, nil
}

// Delete removes the record.
func (s *SQLiteAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, s.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete asset")
	}
	return requireRow(result)
}

func isSQLiteConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	default:
		return false
	}
}
