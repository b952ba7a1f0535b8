package domain

import "context"

// StateRepository persists the full fund state at process boundaries.
// The core performs no I/O itself; only the store calls these.
type StateRepository interface {
	// Save stores the state as the latest version.
	Save(ctx context.Context, st *FundState) error

	// Load retrieves the latest persisted state.
	// Returns ErrStateNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*FundState, error)
}

// SnapshotRepository persists per-period snapshots as a queryable
// time series, one row per period.
type SnapshotRepository interface {
	Add(ctx context.Context, snap MonthSnapshot) error
	List(ctx context.Context) ([]MonthSnapshot, error)
}

// EventRepository persists the append-only audit trail.
type EventRepository interface {
	Add(ctx context.Context, events []SimulationEvent) error

	// List retrieves events newest-first, paginated.
	List(ctx context.Context, limit, offset int) ([]SimulationEvent, error)
}
