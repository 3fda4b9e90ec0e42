package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantumtech/hiredroid/constants"
	"github.com/quantumtech/hiredroid/internal/common"
)

// readArtifact loads and decodes the artifact persisted under (jobID, stage).
// The second return value distinguishes a genuinely absent artifact from a
// present one: absence is (zero, false, nil). A row that exists but fails to
// decode is corrupt data, reported as a storage failure and NEVER as absence,
// so callers cannot overwrite unparsable-but-real data.
func readArtifact[T any](ctx context.Context, db *sql.DB, jobID string, stage constants.Stage) (T, bool, error) {
	var zero T
	var payload []byte
	err := db.QueryRowContext(ctx,
		`SELECT payload FROM artifacts WHERE job_id = $1 AND stage = $2`,
		jobID, string(stage)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("%w: read %s for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return zero, false, fmt.Errorf("%w: corrupt %s artifact for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	return out, true, nil
}

// writeArtifact persists an artifact atomically under (jobID, stage). The
// single upsert statement commits or leaves nothing behind; a concurrent
// reader never observes a partial payload.
func writeArtifact(ctx context.Context, db *sql.DB, jobID string, stage constants.Stage, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO artifacts (job_id, stage, payload, written_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, stage) DO UPDATE SET
			payload = excluded.payload,
			written_at = excluded.written_at
	`, jobID, string(stage), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: write %s for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	return nil
}

// writeArtifactTx is writeArtifact inside an existing transaction.
func writeArtifactTx(ctx context.Context, tx *sql.Tx, jobID string, stage constants.Stage, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (job_id, stage, payload, written_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, stage) DO UPDATE SET
			payload = excluded.payload,
			written_at = excluded.written_at
	`, jobID, string(stage), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: write %s for job %s: %v", common.ErrStorageFailure, stage, jobID, err)
	}
	return nil
}
