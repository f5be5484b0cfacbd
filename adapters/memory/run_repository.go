package memory

import (
	"context"
	"sort"
	"sync"

	"gobanner/domain/core"
	"gobanner/domain/run"
	"gobanner/internal/errors"
	"gobanner/ports"
)

// RunRepository keeps the run ledger in process memory
type RunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]run.Run
}

// NewRunRepository creates an empty repository
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]run.Run)}
}

// Save stores a copy of the run
func (r *RunRepository) Save(ctx context.Context, entry *run.Run) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[entry.ID] = *entry
	return nil
}

// Get returns a copy of the run
func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.runs[id]
	if !ok {
		return nil, errors.NotFound("run "+id.String(), core.ErrRunNotFound)
	}
	return &entry, nil
}

// List returns summaries newest first
func (r *RunRepository) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	r.mu.RLock()
	entries := make([]run.Run, 0, len(r.runs))
	for _, e := range r.runs {
		if filters.Status != nil && e.Status != *filters.Status {
			continue
		}
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].CreatedAt.Time(), entries[j].CreatedAt.Time()
		if ti.Equal(tj) {
			return entries[i].ID > entries[j].ID
		}
		return ti.After(tj)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(entries) {
			return []ports.RunSummary{}, nil
		}
		entries = entries[filters.Offset:]
	}
	if filters.Limit > 0 && len(entries) > filters.Limit {
		entries = entries[:filters.Limit]
	}

	out := make([]ports.RunSummary, len(entries))
	for i := range entries {
		out[i] = ports.Summarize(&entries[i])
	}
	return out, nil
}
