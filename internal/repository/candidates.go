package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
)

// CandidateRepository persists candidate records keyed by (job_id, filename).
// Extraction upserts a record whenever a document arrives; the pipeline never
// deletes them.
type CandidateRepository interface {
	Upsert(ctx context.Context, rec entity.CandidateRecord) error
	Get(ctx context.Context, jobID, filename string) (*entity.CandidateRecord, error)
	ListForJob(ctx context.Context, jobID string) ([]entity.CandidateRecord, error)
}

type candidateRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewCandidateRepository(db *sql.DB, log *slog.Logger) CandidateRepository {
	if log == nil {
		log = slog.Default()
	}
	return &candidateRepo{db: db, log: log}
}

func (r *candidateRepo) Upsert(ctx context.Context, rec entity.CandidateRecord) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("%w: encode candidate fields: %v", common.ErrStorageFailure, err)
	}
	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO candidate_records (job_id, filename, fields, extracted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, filename) DO UPDATE SET
			fields = excluded.fields,
			extracted_at = excluded.extracted_at
	`, rec.JobID, rec.Filename, fields, rec.ExtractedAt)
	if err != nil {
		r.log.Error("candidate upsert failed", "job_id", rec.JobID, "filename", rec.Filename, "error", err)
		return fmt.Errorf("%w: upsert candidate %s/%s: %v", common.ErrStorageFailure, rec.JobID, rec.Filename, err)
	}
	r.log.Info("candidate record saved", "job_id", rec.JobID, "filename", rec.Filename)
	return nil
}

func (r *candidateRepo) Get(ctx context.Context, jobID, filename string) (*entity.CandidateRecord, error) {
	var rec entity.CandidateRecord
	var fields []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT job_id, filename, fields, extracted_at
		FROM candidate_records WHERE job_id = $1 AND filename = $2
	`, jobID, filename).Scan(&rec.JobID, &rec.Filename, &fields, &rec.ExtractedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: candidate %s/%s", common.ErrNotFound, jobID, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get candidate %s/%s: %v", common.ErrStorageFailure, jobID, filename, err)
	}
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("%w: corrupt candidate fields %s/%s: %v", common.ErrStorageFailure, jobID, filename, err)
	}
	return &rec, nil
}

func (r *candidateRepo) ListForJob(ctx context.Context, jobID string) ([]entity.CandidateRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT job_id, filename, fields, extracted_at
		FROM candidate_records WHERE job_id = $1 ORDER BY filename
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list candidates for job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	defer rows.Close()

	var recs []entity.CandidateRecord
	for rows.Next() {
		var rec entity.CandidateRecord
		var fields []byte
		if err := rows.Scan(&rec.JobID, &rec.Filename, &fields, &rec.ExtractedAt); err != nil {
			return nil, fmt.Errorf("%w: scan candidate: %v", common.ErrStorageFailure, err)
		}
		if err := json.Unmarshal(fields, &rec.Fields); err != nil {
			return nil, fmt.Errorf("%w: corrupt candidate fields %s/%s: %v", common.ErrStorageFailure, jobID, rec.Filename, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate candidates: %v", common.ErrStorageFailure, err)
	}
	return recs, nil
}
