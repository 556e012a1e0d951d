package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// SQLiteOutboxEventRepository stores outbox events in SQLite with text ids.
// SQLite has no row locks; the single writer connection serializes workers.
type SQLiteOutboxEventRepository struct {
	db *sql.DB
}

func NewSQLiteOutboxEventRepository(db *sql.DB) *SQLiteOutboxEventRepository {
	return &SQLiteOutboxEventRepository{db: db}
}

func (r *SQLiteOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	query := `INSERT INTO outbox_events (` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	_, err := database.GetTx(ctx, r.db).ExecContext(ctx, query, event.ID.String(), event.EventType,
		event.Payload, string(event.Status), event.Retries, event.LastError, event.ProcessedAt, now, now)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

func (r *SQLiteOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	query := `SELECT ` + eventColumns + `
			  FROM outbox_events
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx, query, string(domain.OutboxEventStatusPending), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	return scanEvents(rows, uuid.Parse)
}

func (r *SQLiteOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	query := `UPDATE outbox_events
			  SET payload = ?, status = ?, retries = ?, last_error = ?, processed_at = ?, updated_at = ?
			  WHERE id = ?`

	_, err := database.GetTx(ctx, r.db).ExecContext(ctx, query, event.Payload, string(event.Status),
		event.Retries, event.LastError, event.ProcessedAt, time.Now().UTC(), event.ID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
