package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// CallTracker materializes a not_done call record for every shortlisted
// candidate. Transcripts arrive out of band (transcript upload or audio
// intake); this worker only guarantees the records exist.
type CallTracker struct {
	store repository.ArtifactStore
	log   *slog.Logger
}

func NewCallTracker(store repository.ArtifactStore, logger *slog.Logger) *CallTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &CallTracker{store: store, log: logger}
}

func (w *CallTracker) Run(ctx context.Context, st pipeline.State) ([]entity.CallRecord, error) {
	filenames := make([]string, 0, len(st.Shortlist))
	for _, entry := range st.Shortlist {
		filenames = append(filenames, entry.Filename)
	}

	calls, err := w.store.EnsureCallRecords(ctx, st.JobID, filenames)
	if err != nil {
		return nil, fmt.Errorf("ensure call records: %w", err)
	}

	done := 0
	for _, c := range calls {
		if c.Completed() {
			done++
		}
	}
	w.log.Info("calls.loaded", "job_id", st.JobID, "total", len(calls), "done", done)
	return calls, nil
}
