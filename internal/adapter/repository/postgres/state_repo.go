package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// stateRepository implements domain.StateRepository. The full fund state
// is stored as one JSON document per version; Load returns the latest.
type stateRepository struct {
	db *DB
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *DB) domain.StateRepository {
	return &stateRepository{db: db}
}

// Save stores the state as the newest version.
func (r *stateRepository) Save(ctx context.Context, st *domain.FundState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode fund state: %w", err)
	}

	query := `INSERT INTO fund_states (state) VALUES ($1)`
	if _, err := r.db.ExecContext(ctx, query, blob); err != nil {
		return fmt.Errorf("failed to save fund state: %w", err)
	}
	return nil
}

// Load retrieves the latest persisted state.
func (r *stateRepository) Load(ctx context.Context) (*domain.FundState, error) {
	query := `
		SELECT state
		FROM fund_states
		ORDER BY id DESC
		LIMIT 1
	`

	var blob []byte
	err := r.db.QueryRowContext(ctx, query).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to load fund state: %w", err)
	}

	var st domain.FundState
	if err := json.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("failed to decode fund state: %w", err)
	}
	if st.Snapshots == nil {
		st.Snapshots = make(map[int]domain.MonthSnapshot)
	}
	return &st, nil
}
