package findings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnexpectedFormat is returned when a collaborator payload is not an array
// of known finding records.
var ErrUnexpectedFormat = errors.New("unexpected data format")

type wireItem struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Solution    *string `json:"solution"`
}

type wireFinding struct {
	Category   *string          `json:"category"`
	Confidence *string          `json:"confidence"`
	Items      *json.RawMessage `json:"items"`
	Label      *string          `json:"label"`
	Response   *string          `json:"response"`
}

// DecodeRaw parses a collaborator response body into typed records. Each
// element must be either a grouped record (category + items) or a legacy
// flat record (label + response); anything else fails the whole payload.
func DecodeRaw(data []byte) ([]RawFinding, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrUnexpectedFormat
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedFormat, err)
	}

	out := make([]RawFinding, 0, len(elems))
	for i, elem := range elems {
		rf, err := decodeElement(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrUnexpectedFormat, i, err)
		}
		out = append(out, rf)
	}
	return out, nil
}

func decodeElement(elem json.RawMessage) (RawFinding, error) {
	var w wireFinding
	if err := json.Unmarshal(elem, &w); err != nil {
		return RawFinding{}, err
	}

	switch {
	case w.Items != nil:
		var items []wireItem
		if !bytes.Equal(bytes.TrimSpace(*w.Items), []byte("null")) {
			if err := json.Unmarshal(*w.Items, &items); err != nil {
				return RawFinding{}, fmt.Errorf("items: %w", err)
			}
		}
		rf := RawFinding{
			Kind:       KindGrouped,
			Category:   deref(w.Category),
			Confidence: ParseConfidence(deref(w.Confidence)),
			Items:      make([]RawItem, 0, len(items)),
		}
		for _, it := range items {
			rf.Items = append(rf.Items, RawItem{
				Title:       deref(it.Title),
				Description: deref(it.Description),
				Type:        ParseItemType(deref(it.Type)),
				Solution:    it.Solution,
			})
		}
		return rf, nil
	case w.Response != nil || w.Label != nil:
		return decodeLegacy(w), nil
	default:
		return RawFinding{}, errors.New("record has neither items nor response")
	}
}

// decodeLegacy splits a flat label/response record into one item. Without a
// label the title comes from the response's first line or sentence.
func decodeLegacy(w wireFinding) RawFinding {
	response := deref(w.Response)
	confidence := ParseConfidence(deref(w.Confidence))
	parts := ExtractParts(response)

	item := RawItem{
		Title:       deref(w.Label),
		Description: response,
		Type:        itemTypeFor(ClassifyText(response, confidence)),
	}
	if item.Title == "" {
		item.Title = parts.Title
		if parts.Details != "" {
			item.Description = parts.Details
		}
	}
	if parts.Solution != "" {
		solution := parts.Solution
		item.Solution = &solution
	}
	return RawFinding{
		Kind:       KindLegacy,
		Category:   deref(w.Category),
		Confidence: confidence,
		Items:      []RawItem{item},
	}
}

func itemTypeFor(status Status) ItemType {
	switch status {
	case StatusIssue:
		return ItemIssue
	case StatusSuggestion:
		return ItemRecommendation
	default:
		return ItemInfo
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
