package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobanner/domain/banner"
	"gobanner/domain/core"
	"gobanner/domain/decision"
	"gobanner/domain/run"
	"gobanner/ports"
)

func newRun(title string) *run.Run {
	r := run.NewRun(core.NewRunID(), title, run.NewRunFingerprint("dataset", "settings", nil, run.CodeVersion), 10)
	r.Complete(banner.Table{}, nil, nil)
	return r
}

func TestRunRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()

	r := newRun("first")
	require.NoError(t, repo.Save(ctx, r))

	got, err := repo.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, run.StatusCompleted, got.Status)

	got.Title = "mutated"
	again, _ := repo.Get(ctx, r.ID)
	assert.Equal(t, "first", again.Title, "callers get copies")

	_, err = repo.Get(ctx, core.NewRunID())
	assert.ErrorIs(t, err, core.ErrRunNotFound)
	assert.True(t, core.IsNotFoundError(err))
}

func TestRunRepository_RejectsInvalid(t *testing.T) {
	r := run.NewRun(core.NewRunID(), "bad", run.RunFingerprint{}, 0)
	assert.Error(t, NewRunRepository().Save(context.Background(), r))
}

func TestRunRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()

	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, newRun(title)))
	}
	suspended := run.NewRun(core.NewRunID(), "waiting", run.NewRunFingerprint("d", "s", nil, run.CodeVersion), 5)
	suspended.Suspend(decision.NewPending(decision.KindAuditApproval, "approve", nil))
	require.NoError(t, repo.Save(ctx, suspended))

	all, err := repo.List(ctx, ports.RunFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	status := run.StatusSuspended
	only, err := repo.List(ctx, ports.RunFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "waiting", only[0].Title)

	page, err := repo.List(ctx, ports.RunFilters{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	empty, err := repo.List(ctx, ports.RunFilters{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
