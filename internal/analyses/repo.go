package analyses

import (
	"context"
	"time"

	"ui-feedback-backend/internal/findings"
)

// Repo defines persistence operations for analysis runs.
type Repo interface {
	Create(ctx context.Context, run Run) error
	GetByID(ctx context.Context, runID string) (Run, error)
	MarkPreprocessed(ctx context.Context, runID string) error
	// Complete stores findings on a processing run.
	Complete(ctx context.Context, runID string, out []findings.NormalizedFinding, at time.Time) error
	// Finish moves a processing run to failed or superseded.
	Finish(ctx context.Context, runID, status, message string, at time.Time) error
	LatestForSession(ctx context.Context, sessionID string) (Run, error)
	LatestCompletedForUser(ctx context.Context, userID string) (Run, error)
	// RecordFeedback stores a vote for tab, failing with ErrFeedbackExists if
	// one is already present.
	RecordFeedback(ctx context.Context, runID, tab, vote string) error
}
