package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/entity"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// Service runs CV extraction: document -> text -> fields -> candidate record.
// It is invoked by the inbox watcher and by the upload endpoint.
type Service struct {
	text       TextExtractor
	candidates repository.CandidateRepository
	log        *slog.Logger
}

func NewService(text TextExtractor, candidates repository.CandidateRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{text: text, candidates: candidates, log: logger}
}

// ProcessCV extracts one document and upserts the candidate record keyed by
// (jobID, filename). Re-processing the same document overwrites the record,
// which keeps intake idempotent.
func (s *Service) ProcessCV(ctx context.Context, jobID, filename, path string) (*entity.CandidateRecord, error) {
	res, err := s.text.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		s.log.Warn("extract.cv.warning", "job_id", jobID, "filename", filename, "warning", w)
	}

	rec := entity.CandidateRecord{
		JobID:       jobID,
		Filename:    constants.NormalizeCVFilename(filename),
		Fields:      ParseCandidateFields(res.Text),
		ExtractedAt: time.Now().UTC(),
	}
	if err := s.candidates.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store candidate record: %w", err)
	}

	s.log.Info("extract.cv.done",
		"job_id", jobID,
		"filename", rec.Filename,
		"pages", res.Pages,
		"name", rec.Fields.Name,
		"has_email", rec.Fields.Email != "",
	)
	return &rec, nil
}
