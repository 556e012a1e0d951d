package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/assetvault/internal/database"
	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// MySQLOutboxEventRepository stores outbox events in MySQL with BINARY(16) ids.
// Pending rows are claimed with FOR UPDATE SKIP LOCKED.
type MySQLOutboxEventRepository struct {
	db *sql.DB
}

func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{db: db}
}

func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	query := `INSERT INTO outbox_events (` + eventColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query, id, event.EventType, event.Payload,
		event.Status, event.Retries, event.LastError, event.ProcessedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

func (r *MySQLOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	query := `SELECT ` + eventColumns + `
			  FROM outbox_events
			  WHERE status = ?
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	return scanEvents(rows, uuid.FromBytes)
}

func (r *MySQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	query := `UPDATE outbox_events
			  SET payload = ?, status = ?, retries = ?, last_error = ?, processed_at = ?, updated_at = NOW(6)
			  WHERE id = ?`

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query, event.Payload, event.Status,
		event.Retries, event.LastError, event.ProcessedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}
