package analyses

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ui-feedback-backend/internal/findings"
	"ui-feedback-backend/internal/shared/server/middleware"
	"ui-feedback-backend/internal/shared/server/respond"
)

// multipartOverhead is allowed on top of the image limit for form framing.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.submit)
	rg.GET("/analyses/current", h.current)
	rg.GET("/analyses/previous", h.previous)
	rg.GET("/analyses/:id", h.get)
	rg.GET("/analyses/:id/tabs/:tab", h.section)
	rg.POST("/analyses/:id/feedback", h.feedback)
	rg.GET("/analyses/:id/export", h.export)
}

func (h *Handler) submit(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	limit := h.Svc.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read image", nil)
		return
	}

	run, err := h.Svc.Submit(c.Request.Context(), id, Upload{FileName: fileHeader.Filename, Data: data})
	if run.ID != "" {
		c.Set(middleware.RunIDKey, run.ID)
	}
	if err != nil {
		writeError(c, err, "failed to analyze image")
		return
	}
	respond.OK(c, toResponse(run))
}

func (h *Handler) current(c *gin.Context) {
	run, err := h.Svc.Current(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load analysis")
		return
	}
	c.Set(middleware.RunIDKey, run.ID)
	respond.OK(c, toResponse(run))
}

func (h *Handler) previous(c *gin.Context) {
	out, err := h.Svc.Previous(c.Request.Context(), middleware.IdentityFromContext(c))
	if err != nil {
		writeError(c, err, "failed to load previous analysis")
		return
	}
	respond.OK(c, gin.H{"findings": out})
}

func (h *Handler) get(c *gin.Context) {
	runID := c.Param("id")
	c.Set(middleware.RunIDKey, runID)
	run, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), runID)
	if err != nil {
		writeError(c, err, "failed to load analysis")
		return
	}
	respond.OK(c, toResponse(run))
}

func (h *Handler) section(c *gin.Context) {
	runID := c.Param("id")
	c.Set(middleware.RunIDKey, runID)
	sec, err := h.Svc.Section(c.Request.Context(), middleware.UserIDFromContext(c), runID, c.Param("tab"))
	if err != nil {
		writeError(c, err, "failed to load analysis")
		return
	}
	respond.OK(c, sec)
}

type feedbackRequest struct {
	Tab  string `json:"tab" binding:"required"`
	Vote string `json:"vote" binding:"required,oneof=helpful not-helpful"`
}

func (h *Handler) feedback(c *gin.Context) {
	runID := c.Param("id")
	c.Set(middleware.RunIDKey, runID)

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "tab and vote (helpful or not-helpful) are required", nil)
		return
	}
	message, err := h.Svc.Feedback(c.Request.Context(), middleware.UserIDFromContext(c), runID, req.Tab, req.Vote)
	if err != nil {
		writeError(c, err, "failed to record feedback")
		return
	}
	respond.OK(c, gin.H{
		"tab":     strings.ToLower(req.Tab),
		"vote":    req.Vote,
		"message": message,
	})
}

func (h *Handler) export(c *gin.Context) {
	runID := c.Param("id")
	c.Set(middleware.RunIDKey, runID)
	artifact, err := h.Svc.Export(c.Request.Context(), middleware.UserIDFromContext(c), runID, c.Query("format"))
	if err != nil {
		writeError(c, err, "failed to export report")
		return
	}
	respond.Attachment(c, artifact.FileName, artifact.ContentType, artifact.Data)
}

// writeError maps service errors onto the standard error envelope.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidUpload), errors.Is(err, ErrInvalidVote), errors.Is(err, ErrInvalidFormat):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), "invalid upload: "), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
	case errors.Is(err, ErrSuperseded):
		respond.Error(c, http.StatusConflict, "superseded", "a newer upload replaced this analysis", nil)
	case errors.Is(err, ErrFeedbackExists):
		respond.Error(c, http.StatusConflict, "feedback_exists", "feedback already recorded for this tab", nil)
	case errors.Is(err, ErrNotCompleted):
		respond.Error(c, http.StatusConflict, "not_completed", "analysis has not completed", nil)
	case errors.Is(err, ErrNothingToExport):
		respond.Error(c, http.StatusConflict, "nothing_to_export", "No analysis results to export", nil)
	case errors.Is(err, ErrUnexpectedFormat):
		respond.Error(c, http.StatusBadGateway, "unexpected_format", MessageUnexpectedFormat, nil)
	case errors.Is(err, ErrAnalyzeFailed):
		respond.Error(c, http.StatusBadGateway, "analysis_failed", MessageAnalyzeFailed, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func toResponse(run Run) gin.H {
	resp := gin.H{
		"id":           run.ID,
		"status":       run.Status,
		"generation":   run.Generation,
		"fileName":     run.FileName,
		"mimeType":     run.MimeType,
		"sizeBytes":    run.SizeBytes,
		"preprocessed": run.Preprocessed,
		"feedback":     run.Feedback,
		"createdAt":    run.CreatedAt,
	}
	if run.Status == StatusCompleted {
		out := run.Findings
		if out == nil {
			out = []findings.NormalizedFinding{}
		}
		resp["findings"] = out
		resp["completedAt"] = run.CompletedAt
	}
	if run.ErrorMessage != "" {
		resp["errorMessage"] = run.ErrorMessage
	}
	return resp
}
