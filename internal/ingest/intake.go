package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/extract"
	"github.com/quantumtech/hiredroid/internal/pipeline"
	"github.com/quantumtech/hiredroid/internal/repository"
)

// Trigger re-runs the pipeline after intake makes progress possible.
// *pipeline.Engine satisfies it.
type Trigger interface {
	Run(ctx context.Context, jobID string) pipeline.State
}

// Intake routes inbox files by extension: documents become candidate records,
// recordings and .txt transcripts complete call records. Inbox filenames carry
// the owning job as a prefix: {jobID}_{original-name}.{ext}.
type Intake struct {
	extractor   *extract.Service
	transcriber extract.AudioTranscriber
	store       repository.ArtifactStore
	trigger     Trigger
	log         *slog.Logger
}

func NewIntake(
	extractor *extract.Service,
	transcriber extract.AudioTranscriber,
	store repository.ArtifactStore,
	trigger Trigger,
	logger *slog.Logger,
) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{
		extractor:   extractor,
		transcriber: transcriber,
		store:       store,
		trigger:     trigger,
		log:         logger,
	}
}

// Consume drains watcher events until the context ends. Per-file failures are
// logged and skipped; intake never stops over one bad file.
func (in *Intake) Consume(ctx context.Context, events <-chan string, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			in.log.Error("ingest.watcher_error", "error", err)
		case path, ok := <-events:
			if !ok {
				return
			}
			if err := in.Handle(ctx, path); err != nil {
				in.log.Error("ingest.file_failed", "path", path, "error", err)
			}
		}
	}
}

// Handle processes one inbox file and triggers a pipeline run for its job.
func (in *Intake) Handle(ctx context.Context, path string) error {
	jobID, rest, err := splitInboxName(filepath.Base(path))
	if err != nil {
		return err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(rest)), ".")
	switch {
	case isDocument(ext):
		if _, err := in.extractor.ProcessCV(ctx, jobID, rest, path); err != nil {
			return err
		}
	case isTranscript(ext):
		if err := in.handleTranscript(ctx, jobID, rest, path, ext); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unsupported inbox extension %q", common.ErrInvalidInput, ext)
	}

	if in.trigger != nil {
		st := in.trigger.Run(ctx, jobID)
		in.log.Info("ingest.pipeline_triggered", "job_id", jobID, "status", string(st.Status))
	}
	return nil
}

// handleTranscript recovers the transcript text and completes the call record
// for the candidate the file is named after.
func (in *Intake) handleTranscript(ctx context.Context, jobID, rest, path, ext string) error {
	base := strings.TrimSuffix(rest, filepath.Ext(rest))
	cvFilename := constants.NormalizeCVFilename(base)

	var transcript string
	if ext == "txt" {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read transcript file: %w", err)
		}
		transcript = strings.TrimSpace(string(b))
	} else {
		text, err := in.transcriber.Transcribe(ctx, path)
		if err != nil {
			return err
		}
		transcript = text
	}

	if err := in.store.MarkCallDone(ctx, jobID, cvFilename, transcript); err != nil {
		return fmt.Errorf("complete call record: %w", err)
	}
	in.log.Info("ingest.transcript_recorded", "job_id", jobID, "filename", cvFilename, "source_ext", ext)
	return nil
}

// splitInboxName separates the job prefix from the original filename.
func splitInboxName(name string) (jobID, rest string, err error) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: inbox filename %q must be {jobID}_{filename}", common.ErrInvalidInput, name)
	}
	return parts[0], parts[1], nil
}

func isDocument(ext string) bool {
	_, ok := constants.DocumentExts[ext]
	return ok
}

func isTranscript(ext string) bool {
	_, ok := constants.TranscriptExts[ext]
	return ok
}
