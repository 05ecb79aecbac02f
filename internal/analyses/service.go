package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ui-feedback-backend/internal/collaborator"
	"ui-feedback-backend/internal/export"
	"ui-feedback-backend/internal/findings"
	"ui-feedback-backend/internal/shared/metrics"
	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/storage/object"
	"ui-feedback-backend/internal/shared/telemetry"
)

const defaultMaxUploadBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Service contains business logic for analysis runs.
type Service struct {
	Repo           Repo
	Store          object.ObjectStore
	Collaborator   collaborator.Client
	Catalog        *findings.Catalog
	MaxUploadBytes int64
	Now            func() time.Time

	gensOnce sync.Once
	gens     *generations
	// preprocessWG tracks fire-and-forget preprocess calls so tests and
	// shutdown can wait for them.
	preprocessWG sync.WaitGroup
}

// Submit stores the upload, fires preprocessing and runs the analysis for the
// caller's session. A newer upload in the same session cancels this one, in
// which case the run is marked superseded and ErrSuperseded is returned.
// The returned run carries its ID whenever one was created, even on error.
func (s *Service) Submit(ctx context.Context, id middleware.Identity, upload Upload) (Run, error) {
	if id.UserID == "" || id.SessionID == "" {
		return Run{}, errors.New("user and session are required")
	}
	mimeType, err := s.validate(upload)
	if err != nil {
		return Run{}, err
	}

	gen, analyzeCtx, finish := s.generations().begin(ctx, id.SessionID)
	defer finish()

	stored, err := s.Store.Put(ctx, object.Object{
		Owner:       id.UserID,
		Name:        upload.FileName,
		ContentType: mimeType,
	}, bytes.NewReader(upload.Data))
	if err != nil {
		return Run{}, fmt.Errorf("store image: %w", err)
	}

	run := Run{
		ID:         uuid.NewString(),
		UserID:     id.UserID,
		SessionID:  id.SessionID,
		Generation: gen,
		FileName:   upload.FileName,
		MimeType:   mimeType,
		SizeBytes:  stored.Size,
		ImageKey:   stored.Key,
		Status:     StatusProcessing,
		Feedback:   map[string]string{},
		CreatedAt:  s.now(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	metrics.IncAnalysisStarted()
	s.logStatus(ctx, run, "submitted")

	img := collaborator.Image{FileName: upload.FileName, ContentType: mimeType, Data: upload.Data}

	s.preprocessWG.Add(1)
	go s.preprocess(middleware.Detach(ctx), run.ID, img)

	startedAt := time.Now()
	raw, err := s.Collaborator.Analyze(analyzeCtx, img)
	metrics.ObserveAnalysisDurationMs(float64(time.Since(startedAt).Milliseconds()))

	// Terminal writes must land even if the caller has gone away.
	writeCtx := middleware.Detach(ctx)
	superseded := func() (Run, error) {
		s.finish(writeCtx, &run, StatusSuperseded, "")
		metrics.IncAnalysisSuperseded()
		return run, ErrSuperseded
	}

	if !s.generations().current(id.SessionID, gen) {
		return superseded()
	}
	if err != nil {
		metrics.IncAnalysisFailed()
		if errors.Is(err, findings.ErrUnexpectedFormat) {
			s.finish(writeCtx, &run, StatusFailed, MessageUnexpectedFormat)
			return run, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
		}
		telemetry.Warn("analysis.collaborator_error", map[string]any{
			"request_id": middleware.RequestIDFrom(ctx),
			"run_id":     run.ID,
			"error":      err,
		})
		s.finish(writeCtx, &run, StatusFailed, MessageAnalyzeFailed)
		return run, fmt.Errorf("%w: %v", ErrAnalyzeFailed, err)
	}

	out := findings.Normalize(raw)
	if findings.IsNonUIImage(raw) {
		metrics.IncInvalidImage()
	}
	var completedAt time.Time
	committed, err := s.generations().commit(id.SessionID, gen, func() error {
		completedAt = s.now()
		return s.Repo.Complete(writeCtx, run.ID, out, completedAt)
	})
	if !committed {
		return superseded()
	}
	if err != nil {
		return run, fmt.Errorf("complete run: %w", err)
	}
	run.Status = StatusCompleted
	run.Findings = out
	run.CompletedAt = &completedAt
	metrics.IncAnalysisCompleted()
	metrics.ObserveFindings(len(out))
	s.logStatus(ctx, run, "processing->completed")
	return run, nil
}

// validate checks size and sniffed content type and returns the MIME type.
func (s *Service) validate(upload Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", fmt.Errorf("%w: image is required", ErrInvalidUpload)
	}
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	if int64(len(upload.Data)) > limit {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidUpload, limit)
	}
	mimeType := http.DetectContentType(upload.Data)
	if !allowedImageTypes[mimeType] {
		return "", fmt.Errorf("%w: unsupported image type %s", ErrInvalidUpload, mimeType)
	}
	return mimeType, nil
}

// preprocess warms the collaborator cache. Failures are logged and counted
// but never reach the caller.
func (s *Service) preprocess(ctx context.Context, runID string, img collaborator.Image) {
	defer s.preprocessWG.Done()
	defer func() {
		if r := recover(); r != nil {
			metrics.IncPreprocessFailed()
			telemetry.Error("analysis.preprocess_panic", map[string]any{"run_id": runID, "panic": fmt.Sprint(r)})
		}
	}()

	if err := s.Collaborator.Preprocess(ctx, img); err != nil {
		metrics.IncPreprocessFailed()
		telemetry.Warn("analysis.preprocess_failed", map[string]any{
			"request_id": middleware.RequestIDFrom(ctx),
			"run_id":     runID,
			"error":      err,
		})
		return
	}
	metrics.IncPreprocessOK()
	if err := s.Repo.MarkPreprocessed(ctx, runID); err != nil {
		telemetry.Warn("analysis.preprocess_mark_failed", map[string]any{"run_id": runID, "error": err})
	}
}

// WaitPreprocess blocks until every started preprocess call has returned.
func (s *Service) WaitPreprocess() {
	s.preprocessWG.Wait()
}

// EndSession drops generation state for a session that signed out and
// cancels its in-flight analysis, if any.
func (s *Service) EndSession(sessionID string) {
	s.generations().forget(sessionID)
}

// Get returns a run owned by userID.
func (s *Service) Get(ctx context.Context, userID, runID string) (Run, error) {
	if strings.TrimSpace(runID) == "" {
		return Run{}, ErrNotFound
	}
	run, err := s.Repo.GetByID(ctx, runID)
	if err != nil {
		return Run{}, err
	}
	if run.UserID != userID {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// Current returns the newest run of the caller's session.
func (s *Service) Current(ctx context.Context, id middleware.Identity) (Run, error) {
	return s.Repo.LatestForSession(ctx, id.SessionID)
}

// Previous fetches the collaborator's prior result. Without a configured
// collaborator it falls back to the user's latest completed run.
func (s *Service) Previous(ctx context.Context, id middleware.Identity) ([]findings.NormalizedFinding, error) {
	raw, err := s.Collaborator.Previous(ctx)
	switch {
	case err == nil:
		return findings.Normalize(raw), nil
	case errors.Is(err, collaborator.ErrNotConfigured):
		run, err := s.Repo.LatestCompletedForUser(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		return run.Findings, nil
	case errors.Is(err, findings.ErrUnexpectedFormat):
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrAnalyzeFailed, err)
	}
}

// Section routes a run's findings to one tab.
func (s *Service) Section(ctx context.Context, userID, runID, tab string) (findings.Section, error) {
	run, err := s.Get(ctx, userID, runID)
	if err != nil {
		return findings.Section{}, err
	}
	return s.catalog().Route(run.Findings, tab, run.Status == StatusCompleted), nil
}

// Feedback records a vote for one tab of a completed run and returns the
// acknowledgement to show the user.
func (s *Service) Feedback(ctx context.Context, userID, runID, tab, vote string) (string, error) {
	var message string
	switch vote {
	case VoteHelpful:
		message = MessageVoteHelpful
	case VoteNotHelpful:
		message = MessageVoteNotHelpful
	default:
		return "", fmt.Errorf("%w: vote must be helpful or not-helpful", ErrInvalidVote)
	}
	t, ok := s.catalog().Lookup(tab)
	if !ok {
		return "", fmt.Errorf("%w: unknown tab %q", ErrInvalidVote, tab)
	}

	run, err := s.Get(ctx, userID, runID)
	if err != nil {
		return "", err
	}
	if run.Status != StatusCompleted {
		return "", ErrNotCompleted
	}
	if err := s.Repo.RecordFeedback(ctx, run.ID, t.Key, vote); err != nil {
		return "", err
	}
	metrics.IncFeedbackVote()
	telemetry.Info("analysis.feedback", map[string]any{
		"request_id": middleware.RequestIDFrom(ctx),
		"run_id":     run.ID,
		"tab":        t.Key,
		"vote":       vote,
	})
	return message, nil
}

// Artifact is an exported report ready for download.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Export renders a completed run as html or json.
func (s *Service) Export(ctx context.Context, userID, runID, format string) (Artifact, error) {
	run, err := s.Get(ctx, userID, runID)
	if err != nil {
		return Artifact{}, err
	}
	if run.Status != StatusCompleted || len(run.Findings) == 0 {
		return Artifact{}, ErrNothingToExport
	}

	report := export.Report{
		GeneratedAt: s.now(),
		Findings:    run.Findings,
		Feedback:    run.Feedback,
		Catalog:     s.catalog(),
	}

	var artifact Artifact
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "html":
		report.Image = s.loadImage(ctx, run)
		artifact = Artifact{
			FileName:    export.HTMLFileName,
			ContentType: "text/html; charset=utf-8",
			Data:        []byte(export.HTML(report)),
		}
	case "json":
		data, err := export.JSON(report)
		if err != nil {
			return Artifact{}, fmt.Errorf("render json: %w", err)
		}
		artifact = Artifact{FileName: export.JSONFileName, ContentType: "application/json", Data: data}
	default:
		return Artifact{}, fmt.Errorf("%w: %s", ErrInvalidFormat, format)
	}
	metrics.IncExport()
	return artifact, nil
}

// loadImage reads the stored screenshot for embedding. A missing image only
// drops it from the report.
func (s *Service) loadImage(ctx context.Context, run Run) *export.Image {
	if s.Store == nil || run.ImageKey == "" {
		return nil
	}
	rc, err := s.Store.Open(ctx, run.ImageKey)
	if err != nil {
		telemetry.Warn("analysis.export_image_missing", map[string]any{"run_id": run.ID, "error": err})
		return nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		telemetry.Warn("analysis.export_image_read", map[string]any{"run_id": run.ID, "error": err})
		return nil
	}
	return &export.Image{ContentType: run.MimeType, Data: data}
}

func (s *Service) finish(ctx context.Context, run *Run, status, message string) {
	at := s.now()
	if err := s.Repo.Finish(ctx, run.ID, status, message, at); err != nil {
		telemetry.Error("analysis.finish_failed", map[string]any{"run_id": run.ID, "status": status, "error": err})
	}
	run.Status = status
	run.ErrorMessage = message
	run.CompletedAt = &at
	s.logStatus(ctx, *run, "processing->"+status)
}

func (s *Service) logStatus(ctx context.Context, run Run, transition string) {
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        middleware.RequestIDFrom(ctx),
		"user_id":           run.UserID,
		"session_id":        run.SessionID,
		"run_id":            run.ID,
		"generation":        run.Generation,
		"status":            run.Status,
		"status_transition": transition,
	})
}

func (s *Service) generations() *generations {
	s.gensOnce.Do(func() {
		s.gens = newGenerations()
	})
	return s.gens
}

func (s *Service) catalog() *findings.Catalog {
	if s.Catalog != nil {
		return s.Catalog
	}
	return findings.DefaultCatalog()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
