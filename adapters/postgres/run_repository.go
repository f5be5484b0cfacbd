package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gobanner/domain/core"
	"gobanner/domain/run"
	"gobanner/internal/errors"
	"gobanner/ports"
)

// Schema creates the run ledger table
const Schema = `
	CREATE TABLE IF NOT EXISTS banner_runs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		respondents INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS banner_runs_status_idx ON banner_runs (status, created_at DESC);`

// RunRepositoryImpl implements ports.RunRepository for PostgreSQL. The full run
// is kept as a JSONB document next to the columns used for listing.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

// Open connects to databaseURL with the lib/pq driver
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// EnsureSchema creates the ledger table if it does not exist
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.DatabaseError("failed to create banner_runs", err)
	}
	return nil
}

// Save upserts a run
func (r *RunRepositoryImpl) Save(ctx context.Context, entry *run.Run) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	document, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "failed to encode run %s", entry.ID)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO banner_runs (id, title, status, respondents, fingerprint, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, status = EXCLUDED.status, respondents = EXCLUDED.respondents,
			fingerprint = EXCLUDED.fingerprint, document = EXCLUDED.document, updated_at = EXCLUDED.updated_at
	`, string(entry.ID), entry.Title, string(entry.Status), entry.Respondents, entry.Fingerprint.Fingerprint.String(),
		document, entry.CreatedAt.Time(), entry.UpdatedAt.Time())
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to save run %s", entry.ID), err)
	}
	return nil
}

// Get loads a run document
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*run.Run, error) {
	var document []byte
	err := r.db.GetContext(ctx, &document, `SELECT document FROM banner_runs WHERE id = $1`, string(id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("run "+id.String(), core.ErrRunNotFound)
	}
	if err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to load run %s", id), err)
	}

	var entry run.Run
	if err := json.Unmarshal(document, &entry); err != nil {
		return nil, errors.Wrapf(err, "failed to decode run %s", id)
	}
	return &entry, nil
}

type summaryRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Status      string    `db:"status"`
	Respondents int       `db:"respondents"`
	Fingerprint string    `db:"fingerprint"`
	CreatedAt   time.Time `db:"created_at"`
}

// List returns run summaries newest first
func (r *RunRepositoryImpl) List(ctx context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	query := `SELECT id, title, status, respondents, fingerprint, created_at FROM banner_runs`
	var args []interface{}
	if filters.Status != nil {
		args = append(args, string(*filters.Status))
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	out := make([]ports.RunSummary, len(rows))
	for i, row := range rows {
		out[i] = ports.RunSummary{
			ID:          core.RunID(row.ID),
			Title:       row.Title,
			Status:      run.Status(row.Status),
			Respondents: row.Respondents,
			Fingerprint: core.Hash(row.Fingerprint),
			CreatedAt:   core.NewTimestamp(row.CreatedAt),
		}
	}
	return out, nil
}

var _ ports.RunRepository = (*RunRepositoryImpl)(nil)
