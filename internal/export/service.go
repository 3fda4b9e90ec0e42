package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quantumtech/hiredroid/internal/repository"
)

// Service is a tiny façade over the store that produces XLSX bytes for one
// job's recruitment report.
type Service struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	store      repository.ArtifactStore
	logger     *slog.Logger
}

func NewService(jobs repository.JobRepository, candidates repository.CandidateRepository, store repository.ArtifactStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, candidates: candidates, store: store, logger: logger}
}

// ExportJobReportXLSX returns an XLSX workbook with one sheet per stage:
// candidate pool, shortlist, screening questions, and final picks. Stages
// that have not produced an artifact yet come out as empty sheets.
func (s *Service) ExportJobReportXLSX(ctx context.Context, jobID string) ([]byte, error) {
	start := time.Now()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	f := excelize.NewFile()

	if err := s.writePoolSheet(ctx, f, jobID); err != nil {
		return nil, err
	}
	if err := s.writeShortlistSheet(ctx, f, jobID); err != nil {
		return nil, err
	}
	if err := s.writeScreeningSheet(ctx, f, jobID); err != nil {
		return nil, err
	}
	if err := s.writePicksSheet(ctx, f, jobID); err != nil {
		return nil, err
	}

	// Drop the default sheet so the report opens on the pool.
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex("Candidate Pool"); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	s.logger.Info("export.report.ok",
		"job_id", jobID,
		"title", job.Title,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(name, cell, h)
	}
	return nil
}

func writeCell(f *excelize.File, sheet string, col, row int, v any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, v)
}

func (s *Service) writePoolSheet(ctx context.Context, f *excelize.File, jobID string) error {
	const sheet = "Candidate Pool"
	if err := newSheet(f, sheet, []string{"Filename", "Name", "Email", "Phone", "Extracted At"}); err != nil {
		return err
	}
	pool, err := s.candidates.ListForJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("query candidates: %w", err)
	}
	row := 2
	for _, c := range pool {
		writeCell(f, sheet, 1, row, c.Filename)
		writeCell(f, sheet, 2, row, c.Fields.Name)
		writeCell(f, sheet, 3, row, c.Fields.Email)
		writeCell(f, sheet, 4, row, c.Fields.Phone)
		if !c.ExtractedAt.IsZero() {
			writeCell(f, sheet, 5, row, c.ExtractedAt.Format("2006-01-02 15:04"))
		}
		row++
	}
	return nil
}

func (s *Service) writeShortlistSheet(ctx context.Context, f *excelize.File, jobID string) error {
	const sheet = "Shortlist"
	if err := newSheet(f, sheet, []string{"Filename", "Name", "Email", "Phone", "Reason"}); err != nil {
		return err
	}
	entries, _, err := s.store.Shortlist(ctx, jobID)
	if err != nil {
		return fmt.Errorf("query shortlist: %w", err)
	}
	row := 2
	for _, e := range entries {
		writeCell(f, sheet, 1, row, e.Filename)
		writeCell(f, sheet, 2, row, e.Name)
		writeCell(f, sheet, 3, row, e.Email)
		writeCell(f, sheet, 4, row, e.Phone)
		writeCell(f, sheet, 5, row, e.Reason)
		row++
	}
	return nil
}

func (s *Service) writeScreeningSheet(ctx context.Context, f *excelize.File, jobID string) error {
	const sheet = "Screening Questions"
	if err := newSheet(f, sheet, []string{"Filename", "#", "Question", "Expected Answer"}); err != nil {
		return err
	}
	sets, _, err := s.store.Screening(ctx, jobID)
	if err != nil {
		return fmt.Errorf("query screening: %w", err)
	}
	row := 2
	for _, set := range sets {
		for i, q := range set.Questions {
			writeCell(f, sheet, 1, row, set.Filename)
			writeCell(f, sheet, 2, row, i+1)
			writeCell(f, sheet, 3, row, q.Question)
			writeCell(f, sheet, 4, row, q.ExpectedAnswer)
			row++
		}
	}
	return nil
}

func (s *Service) writePicksSheet(ctx context.Context, f *excelize.File, jobID string) error {
	const sheet = "Final Picks"
	if err := newSheet(f, sheet, []string{"Filename", "Name", "Score", "Reason", "Interview Time", "Booking Failed"}); err != nil {
		return err
	}
	picks, _, err := s.store.FinalPicks(ctx, jobID)
	if err != nil {
		return fmt.Errorf("query final picks: %w", err)
	}
	row := 2
	for _, p := range picks {
		writeCell(f, sheet, 1, row, p.Filename)
		writeCell(f, sheet, 2, row, p.Name)
		writeCell(f, sheet, 3, row, p.Score)
		writeCell(f, sheet, 4, row, p.Reason)
		if !p.InterviewTime.IsZero() {
			writeCell(f, sheet, 5, row, p.InterviewTime.Format("2006-01-02 15:04 MST"))
		}
		writeCell(f, sheet, 6, row, p.BookingFailed)
		row++
	}
	return nil
}
