package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/run"
	"gobanner/internal/errors"
	"gobanner/ports"
)

func newMockRepository(t *testing.T) (*RunRepositoryImpl, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func completedRun() *run.Run {
	fp := run.NewRunFingerprint(core.NewHash([]byte("data")), core.NewHash([]byte("settings")), []string{"GROUP"}, run.CodeVersion)
	entry := run.NewRun(core.RunID("run-1"), "Wave 1", fp, 10)
	entry.Complete(banner.Table{Banners: []string{"GROUP"}, Columns: []banner.Column{banner.NewTotalColumn(10)}}, nil, nil)
	return entry
}

func TestRunRepository_Save(t *testing.T) {
	repo, mock := newMockRepository(t)
	entry := completedRun()

	mock.ExpectExec("INSERT INTO banner_runs").
		WithArgs("run-1", "Wave 1", "completed", 10, entry.Fingerprint.Fingerprint.String(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_SaveRejectsInvalidRun(t *testing.T) {
	repo, mock := newMockRepository(t)
	entry := completedRun()
	entry.Table = nil

	assert.Error(t, repo.Save(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_Get(t *testing.T) {
	repo, mock := newMockRepository(t)
	entry := completedRun()
	document, err := json.Marshal(entry)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT document FROM banner_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(document))

	got, err := repo.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusCompleted, got.Status)
	assert.Equal(t, entry.Fingerprint.Fingerprint, got.Fingerprint.Fingerprint)
	require.NotNil(t, got.Table)
	assert.Equal(t, []string{"GROUP"}, got.Table.Banners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("SELECT document FROM banner_runs").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestRunRepository_DatabaseFailures(t *testing.T) {
	repo, mock := newMockRepository(t)
	entry := completedRun()
	mock.ExpectExec("INSERT INTO banner_runs").WillReturnError(sql.ErrConnDone)
	mock.ExpectQuery("SELECT document FROM banner_runs").WithArgs("run-1").WillReturnError(sql.ErrConnDone)

	err := repo.Save(context.Background(), entry)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.ErrorIs(t, err, sql.ErrConnDone)

	_, err = repo.Get(context.Background(), "run-1")
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.False(t, core.IsNotFoundError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepository_List(t *testing.T) {
	tests := []struct {
		name    string
		filters ports.RunFilters
		query   string
		args    int
	}{
		{name: "no filters", query: "ORDER BY created_at DESC, id DESC$"},
		{name: "status and paging", filters: func() ports.RunFilters {
			s := run.StatusSuspended
			return ports.RunFilters{Status: &s, Limit: 5, Offset: 10}
		}(), query: `WHERE status = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`, args: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			rows := sqlmock.NewRows([]string{"id", "title", "status", "respondents", "fingerprint", "created_at"}).
				AddRow("run-2", "Wave 2", "suspended", 400, "abc", created)
			expect := mock.ExpectQuery(tt.query)
			if tt.args > 0 {
				expect.WithArgs("suspended", 5, 10)
			}
			expect.WillReturnRows(rows)

			got, err := repo.List(context.Background(), tt.filters)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, core.RunID("run-2"), got[0].ID)
			assert.Equal(t, run.StatusSuspended, got[0].Status)
			assert.Equal(t, 400, got[0].Respondents)
			assert.True(t, created.Equal(got[0].CreatedAt.Time()))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS banner_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
