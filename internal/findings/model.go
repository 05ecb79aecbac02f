package findings

import "strings"

// Confidence is the collaborator's confidence in a finding group.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
	ConfidenceNA     Confidence = "N/A"
)

// ParseConfidence maps a raw value onto a known confidence. Unknown or empty
// values become N/A.
func ParseConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	case "low":
		return ConfidenceLow
	default:
		return ConfidenceNA
	}
}

// ItemType is the collaborator's own tag for a raw item.
type ItemType string

const (
	ItemIssue          ItemType = "issue"
	ItemRecommendation ItemType = "recommendation"
	ItemInfo           ItemType = "info"
)

// ParseItemType maps a raw value onto a known item type; anything
// unrecognized is info.
func ParseItemType(raw string) ItemType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "issue":
		return ItemIssue
	case "recommendation":
		return ItemRecommendation
	default:
		return ItemInfo
	}
}

// Status is the normalized classification shown to users.
type Status string

const (
	StatusIssue      Status = "issue"
	StatusSuggestion Status = "suggestion"
	StatusInfo       Status = "info"
)

// RawKind tags which wire shape a RawFinding was decoded from.
type RawKind int

const (
	KindGrouped RawKind = iota
	KindLegacy
)

func (k RawKind) String() string {
	switch k {
	case KindGrouped:
		return "grouped"
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// RawItem is one piece of feedback inside a RawFinding.
type RawItem struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        ItemType `json:"type"`
	Solution    *string  `json:"solution,omitempty"`
}

// RawFinding is one category record produced by the analysis collaborator.
type RawFinding struct {
	Kind       RawKind    `json:"-"`
	Category   string     `json:"category"`
	Confidence Confidence `json:"confidence"`
	Items      []RawItem  `json:"items"`
}

// NormalizedFinding is the display-ready form of a single raw item.
type NormalizedFinding struct {
	Label      string     `json:"label"`
	Confidence Confidence `json:"confidence"`
	Response   string     `json:"response"`
	Status     Status     `json:"status"`
	Category   string     `json:"category"`
	Details    string     `json:"details"`
	Solution   *string    `json:"solution"`
	Type       ItemType   `json:"type"`
	IsPositive bool       `json:"isPositive"`
}

func stringPtr(s string) *string {
	return &s
}
