package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

type markRecorder struct {
	repository.ArtifactStore

	jobID      string
	filename   string
	transcript string
}

func (m *markRecorder) MarkCallDone(_ context.Context, jobID, filename, transcript string) error {
	m.jobID = jobID
	m.filename = filename
	m.transcript = transcript
	return nil
}

type triggerRecorder struct {
	jobIDs []string
}

func (t *triggerRecorder) Run(_ context.Context, jobID string) pipeline.State {
	t.jobIDs = append(t.jobIDs, jobID)
	return pipeline.State{JobID: jobID}
}

func TestSplitInboxName(t *testing.T) {
	jobID, rest, err := splitInboxName("job-1_ada_lovelace.pdf")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "ada_lovelace.pdf", rest, "only the first underscore separates the job prefix")

	for _, bad := range []string{"noprefix.pdf", "_ada.pdf", "job-1_", ""} {
		_, _, err := splitInboxName(bad)
		assert.ErrorIs(t, err, common.ErrInvalidInput, bad)
	}
}

func TestHandleTextTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job-1_ada.txt")
	require.NoError(t, os.WriteFile(path, []byte("  went really well  \n"), 0o644))

	store := &markRecorder{}
	trigger := &triggerRecorder{}
	in := NewIntake(nil, nil, store, trigger, nil)

	require.NoError(t, in.Handle(context.Background(), path))
	assert.Equal(t, "job-1", store.jobID)
	assert.Equal(t, "ada.pdf", store.filename, "transcript completes the matching CV's call record")
	assert.Equal(t, "went really well", store.transcript)
	assert.Equal(t, []string{"job-1"}, trigger.jobIDs, "intake re-triggers the pipeline")
}

func TestHandleRejectsUnsupportedExtension(t *testing.T) {
	store := &markRecorder{}
	in := NewIntake(nil, nil, store, nil, nil)

	err := in.Handle(context.Background(), "/inbox/job-1_notes.docx")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Empty(t, store.jobID, "nothing recorded for rejected files")
}

func TestHandleRejectsMissingJobPrefix(t *testing.T) {
	in := NewIntake(nil, nil, &markRecorder{}, nil, nil)
	err := in.Handle(context.Background(), "/inbox/ada.pdf")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
