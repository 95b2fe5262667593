package store

import (
	"context"
	"sort"
	"sync"
	"time"

	mdwerror "github.com/msto63/pascal/foundation/core/error"
)

// MemoryRunStore is an in-memory RunStore for tests and history-less runs
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryRunStore creates a new in-memory run store
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make([]*Run, 0),
	}
}

// Save records a run
func (s *MemoryRunStore) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		return mdwerror.New("run ID is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("store.Save")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.runs {
		if existing.ID == run.ID {
			return mdwerror.Newf("run %s already recorded", run.ID).
				WithCode(mdwerror.CodeDatabaseError).
				WithOperation("store.Save")
		}
	}

	copied := *run
	s.runs = append(s.runs, &copied)
	return nil
}

// Get returns the run with the given ID
func (s *MemoryRunStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.runs {
		if run.ID == id {
			copied := *run
			return &copied, nil
		}
	}
	return nil, notFound(id)
}

// List returns runs matching filter, newest first
func (s *MemoryRunStore) List(ctx context.Context, filter RunFilter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		run := s.runs[i]
		if filter.Outcome == OutcomeSucceeded && !run.Success {
			continue
		}
		if filter.Outcome == OutcomeFailed && run.Success {
			continue
		}
		if !filter.Since.IsZero() && run.Timestamp.Before(filter.Since) {
			continue
		}
		copied := *run
		matched = append(matched, &copied)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Stats returns aggregate counts over all runs
func (s *MemoryRunStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByErrorKind: make(map[string]int64)}
	for _, run := range s.runs {
		stats.Total++
		if run.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
			stats.ByErrorKind[run.ErrorKind]++
		}
		if run.Timestamp.After(stats.LastRun) {
			stats.LastRun = run.Timestamp
		}
	}
	return stats, nil
}

// Prune removes runs older than the given duration
func (s *MemoryRunStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var deleted int64

	kept := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		if run.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	s.runs = kept

	return deleted, nil
}

// Ping always succeeds for the memory store
func (s *MemoryRunStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryRunStore) Close() error {
	return nil
}
