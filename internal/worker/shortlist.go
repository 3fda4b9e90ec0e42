package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/llm"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// cvExcerptLen bounds the raw-text slice handed to the shortlist prompt.
const cvExcerptLen = 500

// Shortlister selects up to Cap candidates from the extracted pool and
// persists the result before returning it to the engine.
type Shortlister struct {
	classifier llm.ShortlistClassifier
	store      repository.ArtifactStore
	cap        int
	log        *slog.Logger
}

func NewShortlister(classifier llm.ShortlistClassifier, store repository.ArtifactStore, cap int, logger *slog.Logger) *Shortlister {
	if logger == nil {
		logger = slog.Default()
	}
	if cap <= 0 {
		cap = 5
	}
	return &Shortlister{classifier: classifier, store: store, cap: cap, log: logger}
}

func (w *Shortlister) Run(ctx context.Context, st pipeline.State) ([]entity.ShortlistEntry, error) {
	req := llm.ShortlistRequest{
		JobTitle:       st.Job.Title,
		JobDescription: st.Job.Description,
		Cap:            w.cap,
	}
	pool := make(map[string]struct{}, len(st.Candidates))
	for _, c := range st.Candidates {
		pool[constants.NormalizeCVFilename(c.Filename)] = struct{}{}
		req.Candidates = append(req.Candidates, llm.CandidateSummary{
			Filename: c.Filename,
			Name:     c.Fields.Name,
			Email:    c.Fields.Email,
			Phone:    c.Fields.Phone,
			Excerpt:  excerpt(c.Fields.RawText, cvExcerptLen),
		})
	}

	picks, _, err := w.classifier.Shortlist(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("shortlist candidates: %w", err)
	}

	entries := make([]entity.ShortlistEntry, 0, len(picks))
	for _, p := range picks {
		fn := constants.NormalizeCVFilename(p.Filename)
		if _, ok := pool[fn]; !ok {
			// The model may only pick from the pool; anything else is dropped.
			w.log.Warn("shortlist.unknown_filename_dropped", "job_id", st.JobID, "filename", p.Filename)
			continue
		}
		entries = append(entries, entity.ShortlistEntry{
			Filename: fn,
			Name:     p.Name,
			Email:    p.Email,
			Phone:    p.Phone,
			Reason:   p.Reason,
		})
		if len(entries) == w.cap {
			break
		}
	}

	if err := w.store.SaveShortlist(ctx, st.JobID, entries); err != nil {
		return nil, fmt.Errorf("persist shortlist: %w", err)
	}
	w.log.Info("shortlist.done", "job_id", st.JobID, "pool", len(st.Candidates), "selected", len(entries))
	return entries, nil
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
