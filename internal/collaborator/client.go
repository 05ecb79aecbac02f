package collaborator

import (
	"context"
	"errors"

	"ui-feedback-backend/internal/findings"
)

// Image is an uploaded screenshot as forwarded to the collaborator.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Client abstracts the external image-analysis service.
type Client interface {
	// Preprocess lets the collaborator warm up for an upload. Callers treat
	// it as fire-and-forget.
	Preprocess(ctx context.Context, img Image) error
	// Analyze runs the full analysis and returns the decoded raw records.
	Analyze(ctx context.Context, img Image) ([]findings.RawFinding, error)
	// Previous returns the collaborator's most recent result.
	Previous(ctx context.Context) ([]findings.RawFinding, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("collaborator not configured")

// PlaceholderClient is used when no collaborator URL is configured.
type PlaceholderClient struct{}

func (PlaceholderClient) Preprocess(ctx context.Context, img Image) error {
	_ = ctx
	_ = img
	return ErrNotConfigured
}

func (PlaceholderClient) Analyze(ctx context.Context, img Image) ([]findings.RawFinding, error) {
	_ = ctx
	_ = img
	return nil, ErrNotConfigured
}

func (PlaceholderClient) Previous(ctx context.Context) ([]findings.RawFinding, error) {
	_ = ctx
	return nil, ErrNotConfigured
}
