package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// eventRepository implements domain.EventRepository as an append-only
// audit table.
type eventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) domain.EventRepository {
	return &eventRepository{db: db}
}

// Add appends audit events inside one transaction.
func (r *eventRepository) Add(ctx context.Context, events []domain.SimulationEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO simulation_events (id, event_type, period, message, details)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, ev := range events {
		var details []byte
		if ev.Details != nil {
			details, err = json.Marshal(ev.Details)
			if err != nil {
				return fmt.Errorf("failed to encode event details: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, query, ev.ID, string(ev.Type), ev.Period, ev.Message, details); err != nil {
			return fmt.Errorf("failed to insert simulation event: %w", err)
		}
	}

	return tx.Commit()
}

// List retrieves events newest-first.
func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]domain.SimulationEvent, error) {
	query := `
		SELECT id, event_type, period, message, details
		FROM simulation_events
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list simulation events: %w", err)
	}
	defer rows.Close()

	var events []domain.SimulationEvent
	for rows.Next() {
		var ev domain.SimulationEvent
		var eventType string
		var details sql.NullString

		if err := rows.Scan(&ev.ID, &eventType, &ev.Period, &ev.Message, &details); err != nil {
			return nil, fmt.Errorf("failed to scan simulation event: %w", err)
		}
		ev.Type = domain.EventType(eventType)

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &ev.Details); err != nil {
				return nil, fmt.Errorf("failed to decode event details: %w", err)
			}
		}

		events = append(events, ev)
	}
	return events, rows.Err()
}
