package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ui-feedback-backend/internal/findings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const runColumns = `id, user_id, session_id, generation, file_name, mime_type, size_bytes, image_key,
       status, preprocessed, findings, feedback, error_message, created_at, completed_at`

// Create inserts a new run.
func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO analysis_runs (
	id, user_id, session_id, generation, file_name, mime_type, size_bytes, image_key,
	status, preprocessed, findings, feedback, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	findingsPayload, err := marshalJSONB(run.Findings, "[]")
	if err != nil {
		return err
	}
	feedbackPayload, err := marshalJSONB(run.Feedback, "{}")
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		run.ID,
		run.UserID,
		run.SessionID,
		run.Generation,
		run.FileName,
		run.MimeType,
		run.SizeBytes,
		run.ImageKey,
		run.Status,
		run.Preprocessed,
		findingsPayload,
		feedbackPayload,
		run.CreatedAt,
	)
	return err
}

// GetByID returns a run by ID.
func (r *PGRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	query := `
SELECT ` + runColumns + `
FROM analysis_runs
WHERE id = $1
LIMIT 1`
	return scanRun(r.DB.QueryRowContext(ctx, query, runID))
}

func (r *PGRepo) MarkPreprocessed(ctx context.Context, runID string) error {
	const query = `UPDATE analysis_runs SET preprocessed = TRUE WHERE id = $1`
	return r.execOne(ctx, query, runID)
}

func (r *PGRepo) Complete(ctx context.Context, runID string, out []findings.NormalizedFinding, at time.Time) error {
	const query = `
UPDATE analysis_runs
SET status = $2, findings = $3, completed_at = $4
WHERE id = $1 AND status = 'processing'`
	payload, err := marshalJSONB(out, "[]")
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, runID, StatusCompleted, payload, at)
}

func (r *PGRepo) Finish(ctx context.Context, runID, status, message string, at time.Time) error {
	const query = `
UPDATE analysis_runs
SET status = $2, error_message = $3, completed_at = $4
WHERE id = $1 AND status = 'processing'`
	return r.execOne(ctx, query, runID, status, nullableString(message), at)
}

func (r *PGRepo) LatestForSession(ctx context.Context, sessionID string) (Run, error) {
	query := `
SELECT ` + runColumns + `
FROM analysis_runs
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return scanRun(r.DB.QueryRowContext(ctx, query, sessionID))
}

func (r *PGRepo) LatestCompletedForUser(ctx context.Context, userID string) (Run, error) {
	query := `
SELECT ` + runColumns + `
FROM analysis_runs
WHERE user_id = $1 AND status = 'completed'
ORDER BY completed_at DESC
LIMIT 1`
	return scanRun(r.DB.QueryRowContext(ctx, query, userID))
}

// RecordFeedback adds tab to the feedback object only when it is absent.
func (r *PGRepo) RecordFeedback(ctx context.Context, runID, tab, vote string) error {
	const query = `
UPDATE analysis_runs
SET feedback = feedback || jsonb_build_object($2::text, $3::text)
WHERE id = $1 AND NOT (feedback ? $2)`
	res, err := r.DB.ExecContext(ctx, query, runID, tab, vote)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, runID); err != nil {
		return err
	}
	return ErrFeedbackExists
}

// execOne runs an update and reports ErrNotFound when no row matched the id.
// Conditional updates that skip a finished run are not errors.
func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		runID, _ := args[0].(string)
		if _, err := r.GetByID(ctx, runID); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var findingsRaw []byte
	var feedbackRaw []byte
	var errorMessage sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.UserID,
		&run.SessionID,
		&run.Generation,
		&run.FileName,
		&run.MimeType,
		&run.SizeBytes,
		&run.ImageKey,
		&run.Status,
		&run.Preprocessed,
		&findingsRaw,
		&feedbackRaw,
		&errorMessage,
		&run.CreatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	if len(findingsRaw) > 0 {
		if err := json.Unmarshal(findingsRaw, &run.Findings); err != nil {
			return Run{}, fmt.Errorf("decode findings: %w", err)
		}
	}
	run.Feedback = map[string]string{}
	if len(feedbackRaw) > 0 {
		if err := json.Unmarshal(feedbackRaw, &run.Feedback); err != nil {
			return Run{}, fmt.Errorf("decode feedback: %w", err)
		}
	}
	if errorMessage.Valid {
		run.ErrorMessage = errorMessage.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}

func marshalJSONB(v any, empty string) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(payload) == "null" {
		return empty, nil
	}
	return string(payload), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
