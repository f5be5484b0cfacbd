package run

import (
	"gobanner/domain/audit"
	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "1.0.0"

// Run is the ledger entry of one pipeline execution. A suspended run carries
// the pending decision; a completed run carries the table.
type Run struct {
	ID          core.RunID                  `json:"id" db:"id"`
	Title       string                      `json:"title" db:"title"`
	Status      Status                      `json:"status" db:"status"`
	Fingerprint RunFingerprint              `json:"fingerprint"`
	Respondents int                         `json:"respondents" db:"respondents"`
	Pending     *decision.Pending           `json:"pending,omitempty"`
	Decisions   decision.Record             `json:"decisions"`
	Table       *banner.Table               `json:"table,omitempty"`
	Tests       []banner.SignificanceResult `json:"significance,omitempty"`
	Warnings    []audit.Warning             `json:"warnings,omitempty"`
	Error       string                      `json:"error,omitempty" db:"error"`
	CreatedAt   core.Timestamp              `json:"created_at"`
	UpdatedAt   core.Timestamp              `json:"updated_at"`
}

// NewRun starts a ledger entry for a run
func NewRun(id core.RunID, title string, fingerprint RunFingerprint, respondents int) *Run {
	now := core.Now()
	return &Run{
		ID:          id,
		Title:       title,
		Status:      StatusSuspended,
		Fingerprint: fingerprint,
		Respondents: respondents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Suspend records the decision the run is waiting on
func (r *Run) Suspend(p *decision.Pending) {
	r.Status = StatusSuspended
	r.Pending = p
	r.UpdatedAt = core.Now()
}

// Complete records the final table and test results
func (r *Run) Complete(table banner.Table, tests []banner.SignificanceResult, warnings []audit.Warning) {
	r.Status = StatusCompleted
	r.Pending = nil
	r.Table = &table
	r.Tests = tests
	r.Warnings = warnings
	r.UpdatedAt = core.Now()
}

// Fail records a fatal error
func (r *Run) Fail(err error) {
	r.Status = StatusFailed
	r.Pending = nil
	r.Error = err.Error()
	r.UpdatedAt = core.Now()
}

// Validate checks if the run entry is complete
func (r *Run) Validate() error {
	if core.ID(r.ID).IsEmpty() {
		return core.NewValidationError("run", "id cannot be empty")
	}
	if r.Fingerprint.DatasetHash.IsEmpty() {
		return core.NewValidationError("run", "dataset_hash cannot be empty")
	}
	switch r.Status {
	case StatusSuspended:
		if r.Pending == nil {
			return core.NewValidationError("run", "suspended run has no pending decision")
		}
	case StatusCompleted:
		if r.Table == nil {
			return core.NewValidationError("run", "completed run has no table")
		}
	case StatusFailed:
	default:
		return core.NewValidationError("run", "unknown status "+string(r.Status))
	}
	return nil
}
