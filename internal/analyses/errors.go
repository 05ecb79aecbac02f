package analyses

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidUpload    = errors.New("invalid upload")
	ErrSuperseded       = errors.New("analysis superseded by a newer upload")
	ErrAnalyzeFailed    = errors.New("analyze failed")
	ErrUnexpectedFormat = errors.New("unexpected collaborator response")
	ErrFeedbackExists   = errors.New("feedback already recorded for this tab")
	ErrInvalidVote      = errors.New("invalid feedback vote")
	ErrNotCompleted     = errors.New("analysis not completed")
	ErrNothingToExport  = errors.New("no analysis results to export")
	ErrInvalidFormat    = errors.New("unsupported export format")
)

// User-facing messages. Collaborator failures never leak details.
const (
	MessageAnalyzeFailed    = "Failed to analyze image. Please try again."
	MessageUnexpectedFormat = "Received unexpected data format from server."
	MessageVoteHelpful      = "Thank you for your feedback! We're glad this analysis was helpful."
	MessageVoteNotHelpful   = "Thanks for letting us know. We'll work on improving this type of analysis."
)
