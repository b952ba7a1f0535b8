// Package store holds the latest fund state and dispatches operations
// against it. All mutation is whole-state replacement: an operation runs
// on a private clone and the pointer is swapped only on success, so every
// dispatch is atomic from the caller's perspective and readers never see
// a partial write.
package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// Operation mutates a private clone of the fund state and reports the
// audit events it produced. Returning an error discards the clone.
type Operation func(st *domain.FundState) ([]domain.SimulationEvent, error)

// Store is the single shared holder of fund state.
type Store struct {
	mu    sync.RWMutex
	state *domain.FundState

	stateRepo domain.StateRepository
	snapRepo  domain.SnapshotRepository
	eventRepo domain.EventRepository
	logger    *zap.Logger

	lastPersistedSnapshot int
}

// New creates a store; call Init before use.
func New(stateRepo domain.StateRepository, snapRepo domain.SnapshotRepository, eventRepo domain.EventRepository, logger *zap.Logger) *Store {
	return &Store{
		stateRepo:             stateRepo,
		snapRepo:              snapRepo,
		eventRepo:             eventRepo,
		logger:                logger,
		lastPersistedSnapshot: -1,
	}
}

// Init loads the latest persisted state, or bootstraps a fresh fund with
// the given configuration when nothing has been saved yet. Returns true
// when a fresh state was created.
func (s *Store) Init(ctx context.Context, cfg domain.FundConfig) (bool, error) {
	st, err := s.stateRepo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		st = domain.NewFundState(cfg)
		if err := s.stateRepo.Save(ctx, st); err != nil {
			return false, err
		}
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
		s.logger.Info("bootstrapped fresh fund state")
		return true, nil
	case err != nil:
		return false, err
	}

	s.mu.Lock()
	s.state = st
	s.lastPersistedSnapshot = st.CurrentPeriod - 1
	s.mu.Unlock()
	s.logger.Info("loaded persisted fund state",
		zap.Int("currentPeriod", st.CurrentPeriod),
		zap.String("nav", st.NAV.String()))
	return false, nil
}

// State returns the current state for reading. The returned value is
// never mutated in place; treat it as immutable.
func (s *Store) State() *domain.FundState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch runs op on a clone of the current state, persists the result
// and swaps the pointer. Writers are serialized; a failed operation or a
// failed state save leaves the store untouched.
func (s *Store) Dispatch(ctx context.Context, op Operation) ([]domain.SimulationEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()

	events, err := op(next)
	if err != nil {
		return nil, err
	}

	if err := s.stateRepo.Save(ctx, next); err != nil {
		return nil, err
	}

	// Snapshot rows and audit events are best-effort once the state blob
	// is durable: the blob already contains the snapshots.
	for p := s.lastPersistedSnapshot + 1; p < next.CurrentPeriod; p++ {
		snap, ok := next.Snapshots[p]
		if !ok {
			continue
		}
		if err := s.snapRepo.Add(ctx, snap); err != nil {
			s.logger.Warn("failed to persist month snapshot", zap.Int("period", p), zap.Error(err))
			break
		}
		s.lastPersistedSnapshot = p
	}

	if len(events) > 0 {
		if err := s.eventRepo.Add(ctx, events); err != nil {
			s.logger.Warn("failed to persist audit events", zap.Int("count", len(events)), zap.Error(err))
		}
	}

	s.state = next
	return events, nil
}
