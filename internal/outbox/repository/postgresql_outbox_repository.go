// Package repository persists upload retry events for the supported SQL drivers.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// PostgreSQLOutboxEventRepository stores outbox events in PostgreSQL. Pending
// rows are claimed with FOR UPDATE SKIP LOCKED, so concurrent workers never
// retry the same upload.
type PostgreSQLOutboxEventRepository struct {
	db *sql.DB
}

func NewPostgreSQLOutboxEventRepository(db *sql.DB) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{db: db}
}

func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	query := `INSERT INTO outbox_events (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := database.GetTx(ctx, r.db).ExecContext(ctx, query, event.ID, event.EventType, event.Payload,
		event.Status, event.Retries, event.LastError, event.ProcessedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// GetPendingEvents claims the oldest pending events. The locks last until the
// surrounding transaction ends.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	query := `SELECT ` + eventColumns + `
			  FROM outbox_events
			  WHERE status = $1
			  ORDER BY created_at ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	return scanEvents(rows, func(id uuid.UUID) (uuid.UUID, error) { return id, nil })
}

// Update writes the settlement columns of event.
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	query := `UPDATE outbox_events
			  SET payload = $1, status = $2, retries = $3, last_error = $4, processed_at = $5, updated_at = NOW()
			  WHERE id = $6`

	_, err := database.GetTx(ctx, r.db).ExecContext(ctx, query, event.Payload, event.Status,
		event.Retries, event.LastError, event.ProcessedAt, event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
