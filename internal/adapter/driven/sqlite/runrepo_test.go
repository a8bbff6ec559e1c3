package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

func makeRun(id string, started time.Time, status model.RunStatus) model.RunSummary {
	return model.RunSummary{
		RunID:      id,
		Status:     status,
		Counts:     model.RunCounts{VideosScanned: 3, RecordsWritten: 42},
		OutputPath: "data/raw/2025-10-28/youtube.ndjson",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
	}
}

func TestRunRepo_SaveAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	started := time.Date(2025, 10, 28, 9, 0, 0, 123456789, time.UTC)
	require.NoError(t, repo.Save(ctx, makeRun("run-1", started, model.RunStatusSuccess)))

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, model.RunStatusSuccess, got.Status)
	assert.Equal(t, model.RunCounts{VideosScanned: 3, RecordsWritten: 42}, got.Counts)
	assert.Equal(t, "data/raw/2025-10-28/youtube.ndjson", got.OutputPath)
	assert.True(t, started.Equal(got.StartedAt))
	assert.True(t, started.Add(90*time.Second).Equal(got.FinishedAt))
}

func TestRunRepo_ListNewestFirstWithLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Date(2025, 10, 28, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, makeRun("oldest", base, model.RunStatusSuccess)))
	require.NoError(t, repo.Save(ctx, makeRun("newest", base.Add(2*time.Hour), model.RunStatusSuccess)))
	require.NoError(t, repo.Save(ctx, makeRun("middle", base.Add(500*time.Millisecond), model.RunStatusError)))

	runs, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newest", runs[0].RunID)
	assert.Equal(t, "middle", runs[1].RunID)
	assert.Equal(t, model.RunStatusError, runs[1].Status)
}

func TestRunRepo_SaveSameRunReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	run := makeRun("run-1", time.Date(2025, 10, 28, 9, 0, 0, 0, time.UTC), model.RunStatusError)
	require.NoError(t, repo.Save(ctx, run))

	run.Status = model.RunStatusSuccess
	run.Message = ""
	require.NoError(t, repo.Save(ctx, run))

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusSuccess, runs[0].Status)
}

func TestRunRepo_ListEmpty(t *testing.T) {
	repo := NewRunRepo(setupTestDB(t))

	runs, err := repo.ListRecent(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestNewDB_FileBacked(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	// Second run is a no-op.
	require.NoError(t, RunMigrations(db.Writer))

	repo := NewRunRepo(db)
	require.NoError(t, repo.Save(ctx, makeRun("run-1", time.Now(), model.RunStatusSuccess)))

	runs, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
