package ports

import (
	"context"

	"gobanner/domain/core"
	"gobanner/domain/run"
)

// RunRepository persists the run ledger
type RunRepository interface {
	// Save inserts or replaces a run
	Save(ctx context.Context, r *run.Run) error

	// Get returns a run or an error wrapping core.ErrRunNotFound
	Get(ctx context.Context, id core.RunID) (*run.Run, error)

	// List returns run summaries, newest first
	List(ctx context.Context, filters RunFilters) ([]RunSummary, error)
}

// RunFilters for querying runs
type RunFilters struct {
	Status *run.Status
	Limit  int
	Offset int
}

// RunSummary is the list view of a run
type RunSummary struct {
	ID          core.RunID     `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Status      run.Status     `json:"status" db:"status"`
	Respondents int            `json:"respondents" db:"respondents"`
	Fingerprint core.Hash      `json:"fingerprint" db:"fingerprint"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// Summarize builds the list view of a run
func Summarize(r *run.Run) RunSummary {
	return RunSummary{
		ID:          r.ID,
		Title:       r.Title,
		Status:      r.Status,
		Respondents: r.Respondents,
		Fingerprint: r.Fingerprint.Fingerprint,
		CreatedAt:   r.CreatedAt,
	}
}
