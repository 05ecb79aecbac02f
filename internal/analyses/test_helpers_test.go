package analyses

import (
	"context"
	"sync"
	"testing"

	"ui-feedback-backend/internal/collaborator"
	"ui-feedback-backend/internal/findings"
	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/storage/object/local"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

type fakeCollaborator struct {
	mu            sync.Mutex
	analyze       func(ctx context.Context, img collaborator.Image) ([]findings.RawFinding, error)
	previous      func(ctx context.Context) ([]findings.RawFinding, error)
	preprocessErr error
	preprocessed  []string
}

func (f *fakeCollaborator) Preprocess(ctx context.Context, img collaborator.Image) error {
	f.mu.Lock()
	f.preprocessed = append(f.preprocessed, img.FileName)
	f.mu.Unlock()
	return f.preprocessErr
}

func (f *fakeCollaborator) Analyze(ctx context.Context, img collaborator.Image) ([]findings.RawFinding, error) {
	if f.analyze == nil {
		return nil, nil
	}
	return f.analyze(ctx, img)
}

func (f *fakeCollaborator) Previous(ctx context.Context) ([]findings.RawFinding, error) {
	if f.previous == nil {
		return nil, collaborator.ErrNotConfigured
	}
	return f.previous(ctx)
}

func staticResult(raw []findings.RawFinding) func(context.Context, collaborator.Image) ([]findings.RawFinding, error) {
	return func(context.Context, collaborator.Image) ([]findings.RawFinding, error) {
		return raw, nil
	}
}

func spacingResult() []findings.RawFinding {
	return []findings.RawFinding{{
		Kind:       findings.KindGrouped,
		Category:   "visual",
		Confidence: findings.ConfidenceMedium,
		Items: []findings.RawItem{{
			Title:       "Inconsistent spacing",
			Description: "Consider standardizing margins. Recommendation: use an 8px grid.",
			Type:        findings.ItemRecommendation,
		}},
	}}
}

func newTestService(t *testing.T, collab collaborator.Client) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	return &Service{
		Repo:         repo,
		Store:        local.New(t.TempDir()),
		Collaborator: collab,
	}, repo
}

func testIdentity() middleware.Identity {
	return middleware.Identity{UserID: "dev_example_com", SessionID: "sess-1", Email: "dev@example.com"}
}
