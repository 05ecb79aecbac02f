package analyses

import (
	"context"
	"sync"
	"time"

	"ui-feedback-backend/internal/findings"
)

// MemoryRepo stores runs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Run
	// order keeps insertion order for latest-run lookups.
	order []string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Run)}
}

func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run.Feedback = copyFeedback(run.Feedback)
	r.byID[run.ID] = run
	r.order = append(r.order, run.ID)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.byID[runID]
	if !ok {
		return Run{}, ErrNotFound
	}
	return cloneRun(run), nil
}

func (r *MemoryRepo) MarkPreprocessed(ctx context.Context, runID string) error {
	return r.update(ctx, runID, func(run *Run) {
		run.Preprocessed = true
	})
}

func (r *MemoryRepo) Complete(ctx context.Context, runID string, out []findings.NormalizedFinding, at time.Time) error {
	return r.update(ctx, runID, func(run *Run) {
		if run.Status != StatusProcessing {
			return
		}
		run.Status = StatusCompleted
		run.Findings = append([]findings.NormalizedFinding(nil), out...)
		completed := at
		run.CompletedAt = &completed
	})
}

func (r *MemoryRepo) Finish(ctx context.Context, runID, status, message string, at time.Time) error {
	return r.update(ctx, runID, func(run *Run) {
		if run.Status != StatusProcessing {
			return
		}
		run.Status = status
		run.ErrorMessage = message
		completed := at
		run.CompletedAt = &completed
	})
}

func (r *MemoryRepo) LatestForSession(ctx context.Context, sessionID string) (Run, error) {
	return r.latest(ctx, func(run Run) bool {
		return run.SessionID == sessionID
	})
}

func (r *MemoryRepo) LatestCompletedForUser(ctx context.Context, userID string) (Run, error) {
	return r.latest(ctx, func(run Run) bool {
		return run.UserID == userID && run.Status == StatusCompleted
	})
}

func (r *MemoryRepo) RecordFeedback(ctx context.Context, runID, tab, vote string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[runID]
	if !ok {
		return ErrNotFound
	}
	if _, voted := run.Feedback[tab]; voted {
		return ErrFeedbackExists
	}
	if run.Feedback == nil {
		run.Feedback = make(map[string]string)
	}
	run.Feedback[tab] = vote
	r.byID[runID] = run
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, runID string, fn func(run *Run)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.byID[runID]
	if !ok {
		return ErrNotFound
	}
	fn(&run)
	r.byID[runID] = run
	return nil
}

func (r *MemoryRepo) latest(ctx context.Context, match func(Run) bool) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		run := r.byID[r.order[i]]
		if match(run) {
			return cloneRun(run), nil
		}
	}
	return Run{}, ErrNotFound
}

func cloneRun(run Run) Run {
	run.Feedback = copyFeedback(run.Feedback)
	run.Findings = append([]findings.NormalizedFinding(nil), run.Findings...)
	return run
}

func copyFeedback(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
