package analyses

import (
	"time"

	"ui-feedback-backend/internal/findings"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSuperseded = "superseded"
)

const (
	VoteHelpful    = "helpful"
	VoteNotHelpful = "not-helpful"
)

// Run is one screenshot upload and its analysis outcome.
type Run struct {
	ID           string                       `json:"id"`
	UserID       string                       `json:"userId"`
	SessionID    string                       `json:"sessionId"`
	Generation   int64                        `json:"generation"`
	FileName     string                       `json:"fileName"`
	MimeType     string                       `json:"mimeType"`
	SizeBytes    int64                        `json:"sizeBytes"`
	ImageKey     string                       `json:"-"`
	Status       string                       `json:"status"`
	Preprocessed bool                         `json:"preprocessed"`
	Findings     []findings.NormalizedFinding `json:"findings"`
	Feedback     map[string]string            `json:"feedback"`
	ErrorMessage string                       `json:"errorMessage,omitempty"`
	CreatedAt    time.Time                    `json:"createdAt"`
	CompletedAt  *time.Time                   `json:"completedAt,omitempty"`
}

// Upload is a screenshot received from a client.
type Upload struct {
	FileName string
	Data     []byte
}
