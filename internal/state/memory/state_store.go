// Package memory provides an in-memory state store for development and testing.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/economic-index-etl/internal/ingest"
)

type key struct {
	series string
	target string
}

// StateStore keeps ingestion markers keyed by (series, target).
type StateStore struct {
	mu     sync.RWMutex
	states map[key]ingest.IngestionState
}

// NewStateStore constructs an empty StateStore.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[key]ingest.IngestionState)}
}

// Get returns the marker for (seriesID, target) if present.
func (s *StateStore) Get(_ context.Context, seriesID, target string) (ingest.IngestionState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[key{series: seriesID, target: target}]
	return state, ok, nil
}

// Put overwrites the marker for the state's (series, target).
func (s *StateStore) Put(_ context.Context, state ingest.IngestionState) error {
	if state.SeriesID == "" || state.TargetDestination == "" {
		return fmt.Errorf("series id and target are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[key{series: state.SeriesID, target: state.TargetDestination}] = state
	return nil
}
