package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantumtech/hiredroid/internal/common"
	"github.com/quantumtech/hiredroid/internal/entity"
)

// JobRepository is the job catalog. Jobs are maintained outside the pipeline;
// Upsert exists for seeding and the admin surface, the core only reads.
type JobRepository interface {
	Get(ctx context.Context, jobID string) (*entity.Job, error)
	List(ctx context.Context) ([]entity.Job, error)
	Upsert(ctx context.Context, job entity.Job) error
}

type jobRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewJobRepository(db *sql.DB, log *slog.Logger) JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) Get(ctx context.Context, jobID string) (*entity.Job, error) {
	var job entity.Job
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, location, created_at
		FROM jobs WHERE id = $1
	`, jobID).Scan(&job.ID, &job.Title, &job.Description, &job.Location, &job.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, jobID)
	}
	if err != nil {
		r.log.Error("job lookup failed", "job_id", jobID, "error", err)
		return nil, fmt.Errorf("%w: get job %s: %v", common.ErrStorageFailure, jobID, err)
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context) ([]entity.Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, location, created_at FROM jobs ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list jobs: %v", common.ErrStorageFailure, err)
	}
	defer rows.Close()

	var jobs []entity.Job
	for rows.Next() {
		var job entity.Job
		if err := rows.Scan(&job.ID, &job.Title, &job.Description, &job.Location, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan job: %v", common.ErrStorageFailure, err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate jobs: %v", common.ErrStorageFailure, err)
	}
	return jobs, nil
}

func (r *jobRepo) Upsert(ctx context.Context, job entity.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, description, location, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			location = excluded.location
	`, job.ID, job.Title, job.Description, job.Location, job.CreatedAt)
	if err != nil {
		r.log.Error("job upsert failed", "job_id", job.ID, "error", err)
		return fmt.Errorf("%w: upsert job %s: %v", common.ErrStorageFailure, job.ID, err)
	}
	return nil
}
