package repository

import (
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/allisson/assetvault/internal/errors"
	"github.com/allisson/assetvault/internal/outbox/domain"
)

// eventColumns is the column list every driver selects, in scan order.
const eventColumns = `id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at`

// scanEvents reads eventColumns rows. Drivers store ids differently, so each
// passes the Go type of its id column and a decoder for it.
func scanEvents[ID any](rows *sql.Rows, decodeID func(ID) (uuid.UUID, error)) ([]*domain.OutboxEvent, error) {
	defer rows.Close() //nolint:errcheck

	events := make([]*domain.OutboxEvent, 0)
	for rows.Next() {
		var (
			event domain.OutboxEvent
			rawID ID
		)
		if err := rows.Scan(&rawID, &event.EventType, &event.Payload, &event.Status,
			&event.Retries, &event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}

		id, err := decodeID(rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode outbox event id")
		}
		event.ID = id
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}
