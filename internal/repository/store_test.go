package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
)

type testDeps struct {
	DB         *sql.DB
	Store      ArtifactStore
	Jobs       JobRepository
	Candidates CandidateRepository
}

func openTestDB(t *testing.T) *testDeps {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: "sqlite", Path: t.TempDir()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &testDeps{
		DB:         db,
		Store:      NewArtifactStore(db, nil),
		Jobs:       NewJobRepository(db, nil),
		Candidates: NewCandidateRepository(db, nil),
	}
}

func TestShortlistRoundTrip(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	_, found, err := deps.Store.Shortlist(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, found, "absent artifact must report found=false without error")

	entries := []entity.ShortlistEntry{
		{Filename: "ada.pdf", Name: "Ada", Reason: "strong match"},
		{Filename: "bob.pdf", Name: "Bob", Reason: "relevant stack"},
	}
	require.NoError(t, deps.Store.SaveShortlist(ctx, "job-1", entries))

	got, found, err := deps.Store.Shortlist(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entries, got)

	// Other jobs stay isolated.
	_, found, err = deps.Store.Shortlist(ctx, "job-2")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCorruptArtifactIsNotAbsence(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	_, err := deps.DB.ExecContext(ctx, `
		INSERT INTO artifacts (job_id, stage, payload, written_at)
		VALUES ('job-1', 'shortlist', 'not-json{', CURRENT_TIMESTAMP)
	`)
	require.NoError(t, err)

	_, found, err := deps.Store.Shortlist(ctx, "job-1")
	assert.False(t, found)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorageFailure)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	first := []entity.ShortlistEntry{{Filename: "a.pdf", Reason: "x"}}
	second := []entity.ShortlistEntry{{Filename: "b.pdf", Reason: "y"}, {Filename: "c.pdf", Reason: "z"}}
	require.NoError(t, deps.Store.SaveShortlist(ctx, "job-1", first))
	require.NoError(t, deps.Store.SaveShortlist(ctx, "job-1", second))

	got, found, err := deps.Store.Shortlist(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second, got)
}

func TestRolledBackWriteIsNotObservable(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	tx, err := deps.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	entries := []entity.ShortlistEntry{{Filename: "a.pdf", Reason: "x"}}
	require.NoError(t, writeArtifactTx(ctx, tx, "job-1", constants.StageShortlist, entries))
	require.NoError(t, tx.Rollback())

	// An aborted write must read back as absent, never as a partial artifact.
	_, found, err := deps.Store.Shortlist(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, found)

	// Rolling back an overwrite keeps the previous artifact intact.
	require.NoError(t, deps.Store.SaveShortlist(ctx, "job-1", entries))
	tx, err = deps.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, writeArtifactTx(ctx, tx, "job-1", constants.StageShortlist,
		[]entity.ShortlistEntry{{Filename: "b.pdf", Reason: "y"}}))
	require.NoError(t, tx.Rollback())

	got, found, err := deps.Store.Shortlist(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entries, got)
}

func TestEnsureCallRecordsIsIdempotent(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	calls, err := deps.Store.EnsureCallRecords(ctx, "job-1", []string{"a.pdf", "b.pdf"})
	require.NoError(t, err)
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, constants.CallNotDone, c.CallStatus)
		assert.Empty(t, c.Transcript)
	}

	// Completing one record then re-ensuring must preserve it.
	require.NoError(t, deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "went well"))

	calls, err = deps.Store.EnsureCallRecords(ctx, "job-1", []string{"a.pdf", "b.pdf", "c.pdf"})
	require.NoError(t, err)
	require.Len(t, calls, 3)

	byName := map[string]entity.CallRecord{}
	for _, c := range calls {
		byName[c.Filename] = c
	}
	assert.Equal(t, constants.CallDone, byName["a.pdf"].CallStatus)
	assert.Equal(t, "went well", byName["a.pdf"].Transcript)
	assert.Equal(t, constants.CallNotDone, byName["b.pdf"].CallStatus)
	assert.Equal(t, constants.CallNotDone, byName["c.pdf"].CallStatus)
}

func TestMarkCallDoneHappensOnce(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	_, err := deps.Store.EnsureCallRecords(ctx, "job-1", []string{"a.pdf"})
	require.NoError(t, err)

	require.NoError(t, deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "first transcript"))

	// A repeat upload is acknowledged but does not overwrite.
	require.NoError(t, deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "second transcript"))

	calls, found, err := deps.Store.Calls(ctx, "job-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, calls, 1)
	assert.Equal(t, "first transcript", calls[0].Transcript)
	assert.True(t, calls[0].Completed())
}

func TestMarkCallDoneValidation(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	err := deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "hello")
	assert.ErrorIs(t, err, common.ErrNotFound, "no call records for the job yet")

	_, err = deps.Store.EnsureCallRecords(ctx, "job-1", []string{"b.pdf"})
	require.NoError(t, err)
	err = deps.Store.MarkCallDone(ctx, "job-1", "a.pdf", "hello")
	assert.ErrorIs(t, err, common.ErrNotFound, "unknown filename")
}

func TestJobRepositoryRoundTrip(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	_, err := deps.Jobs.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	job := entity.Job{ID: "job-1", Title: "Backend Engineer", Description: "Go services"}
	require.NoError(t, deps.Jobs.Upsert(ctx, job))

	got, err := deps.Jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)
	assert.False(t, got.CreatedAt.IsZero())

	job.Title = "Senior Backend Engineer"
	require.NoError(t, deps.Jobs.Upsert(ctx, job))
	got, err = deps.Jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", got.Title)

	jobs, err := deps.Jobs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestCandidateRepositoryRoundTrip(t *testing.T) {
	deps := openTestDB(t)
	ctx := context.Background()

	rec := entity.CandidateRecord{
		JobID:    "job-1",
		Filename: "ada.pdf",
		Fields:   entity.CandidateFields{Name: "Ada Lovelace", Email: "ada@example.com", RawText: "Ada Lovelace\nEngineer"},
	}
	require.NoError(t, deps.Candidates.Upsert(ctx, rec))

	got, err := deps.Candidates.Get(ctx, "job-1", "ada.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Fields.Name)
	assert.False(t, got.ExtractedAt.IsZero())

	// Re-extraction overwrites in place.
	rec.Fields.Phone = "+44 20 7946 0999"
	require.NoError(t, deps.Candidates.Upsert(ctx, rec))
	got, err = deps.Candidates.Get(ctx, "job-1", "ada.pdf")
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0999", got.Fields.Phone)

	pool, err := deps.Candidates.ListForJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, pool, 1)

	_, err = deps.Candidates.Get(ctx, "job-1", "missing.pdf")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
