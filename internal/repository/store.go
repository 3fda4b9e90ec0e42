package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
)

// ArtifactStore is the durable checkpoint store the engine and gates consult.
// The boolean on every read distinguishes absence from presence; a decode
// failure surfaces as an error, never as absence. It is the sole source of
// truth for stage completion across invocations.
type ArtifactStore interface {
	Shortlist(ctx context.Context, jobID string) ([]entity.ShortlistEntry, bool, error)
	SaveShortlist(ctx context.Context, jobID string, entries []entity.ShortlistEntry) error

	Screening(ctx context.Context, jobID string) ([]entity.ScreeningSet, bool, error)
	SaveScreening(ctx context.Context, jobID string, sets []entity.ScreeningSet) error

	Calls(ctx context.Context, jobID string) ([]entity.CallRecord, bool, error)
	// EnsureCallRecords creates not_done entries for any shortlisted filename
	// that has no call record yet, preserving existing entries, and returns the
	// full list. Idempotent.
	EnsureCallRecords(ctx context.Context, jobID string, filenames []string) ([]entity.CallRecord, error)
	// MarkCallDone transitions one candidate's call record not_done -> done
	// with the given transcript. The read-modify-write runs in a transaction so
	// concurrent transcript uploads for the same job cannot lose updates, and
	// the transition happens at most once.
	MarkCallDone(ctx context.Context, jobID, filename, transcript string) error

	FinalPicks(ctx context.Context, jobID string) ([]entity.FinalPick, bool, error)
	SaveFinalPicks(ctx context.Context, jobID string, picks []entity.FinalPick) error
}

type artifactStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewArtifactStore(db *sql.DB, log *slog.Logger) ArtifactStore {
	if log == nil {
		log = slog.Default()
	}
	return &artifactStore{db: db, log: log}
}

func (s *artifactStore) Shortlist(ctx context.Context, jobID string) ([]entity.ShortlistEntry, bool, error) {
	return readArtifact[[]entity.ShortlistEntry](ctx, s.db, jobID, constants.StageShortlist)
}

func (s *artifactStore) SaveShortlist(ctx context.Context, jobID string, entries []entity.ShortlistEntry) error {
	if err := writeArtifact(ctx, s.db, jobID, constants.StageShortlist, entries); err != nil {
		return err
	}
	s.log.Info("shortlist saved", "job_id", jobID, "entries", len(entries))
	return nil
}

func (s *artifactStore) Screening(ctx context.Context, jobID string) ([]entity.ScreeningSet, bool, error) {
	return readArtifact[[]entity.ScreeningSet](ctx, s.db, jobID, constants.StageScreening)
}

func (s *artifactStore) SaveScreening(ctx context.Context, jobID string, sets []entity.ScreeningSet) error {
	if err := writeArtifact(ctx, s.db, jobID, constants.StageScreening, sets); err != nil {
		return err
	}
	s.log.Info("screening questions saved", "job_id", jobID, "candidates", len(sets))
	return nil
}

func (s *artifactStore) Calls(ctx context.Context, jobID string) ([]entity.CallRecord, bool, error) {
	return readArtifact[[]entity.CallRecord](ctx, s.db, jobID, constants.StageCalls)
}

func (s *artifactStore) EnsureCallRecords(ctx context.Context, jobID string, filenames []string) ([]entity.CallRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin calls tx for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	calls, _, err := readCallsTx(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(calls))
	for _, c := range calls {
		known[c.Filename] = struct{}{}
	}
	added := 0
	for _, fn := range filenames {
		if _, ok := known[fn]; ok {
			continue
		}
		calls = append(calls, entity.CallRecord{Filename: fn, CallStatus: constants.CallNotDone})
		added++
	}
	if added > 0 {
		if err := writeArtifactTx(ctx, tx, jobID, constants.StageCalls, calls); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit calls for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	if added > 0 {
		s.log.Info("call records initialized", "job_id", jobID, "added", added, "total", len(calls))
	}
	return calls, nil
}

func (s *artifactStore) MarkCallDone(ctx context.Context, jobID, filename, transcript string) error {
	if transcript == "" {
		return fmt.Errorf("%w: empty transcript for %s/%s", common.ErrInvalidInput, jobID, filename)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin calls tx for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	calls, found, err := readCallsTx(ctx, tx, jobID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: no call records for job %s", common.ErrNotFound, jobID)
	}

	idx := -1
	for i, c := range calls {
		if c.Filename == filename {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: call record %s/%s", common.ErrNotFound, jobID, filename)
	}
	if calls[idx].CallStatus == constants.CallDone {
		// The not_done -> done transition happens exactly once.
		s.log.Warn("call already done, transcript ignored", "job_id", jobID, "filename", filename)
		return nil
	}
	calls[idx].CallStatus = constants.CallDone
	calls[idx].Transcript = transcript

	if err := writeArtifactTx(ctx, tx, jobID, constants.StageCalls, calls); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit call update for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	s.log.Info("call marked done", "job_id", jobID, "filename", filename, "transcript_bytes", len(transcript))
	return nil
}

func (s *artifactStore) FinalPicks(ctx context.Context, jobID string) ([]entity.FinalPick, bool, error) {
	return readArtifact[[]entity.FinalPick](ctx, s.db, jobID, constants.StageFinalPicks)
}

func (s *artifactStore) SaveFinalPicks(ctx context.Context, jobID string, picks []entity.FinalPick) error {
	if err := writeArtifact(ctx, s.db, jobID, constants.StageFinalPicks, picks); err != nil {
		return err
	}
	s.log.Info("final picks saved", "job_id", jobID, "picks", len(picks))
	return nil
}

func readCallsTx(ctx context.Context, tx *sql.Tx, jobID string) ([]entity.CallRecord, bool, error) {
	var payload []byte
	err := tx.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE job_id = $1 AND stage = $2`,
		jobID, string(constants.StageCalls)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read calls for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	var calls []entity.CallRecord
	if err := json.Unmarshal(payload, &calls); err != nil {
		return nil, false, fmt.Errorf("%w: corrupt calls artifact for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	return calls, true, nil
}
