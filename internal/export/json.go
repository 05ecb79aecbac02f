package export

import (
	"encoding/json"
	"time"

	"ui-feedback-backend/internal/findings"
)

type jsonReport struct {
	Title    string                                  `json:"title"`
	Date     string                                  `json:"date"`
	Results  map[string][]findings.NormalizedFinding `json:"results"`
	Feedback map[string]string                       `json:"feedback"`
}

// JSON renders the report keyed by tab label. Every known tab label is present,
// with an empty list when it has no findings.
func JSON(r Report) ([]byte, error) {
	out := jsonReport{
		Title:    r.title(),
		Date:     r.generatedAt().Format(time.RFC3339),
		Results:  map[string][]findings.NormalizedFinding{},
		Feedback: map[string]string{},
	}
	for _, g := range r.groups() {
		if g.Tab.Key == "" && len(g.Items) == 0 {
			continue
		}
		items := g.Items
		if items == nil {
			items = []findings.NormalizedFinding{}
		}
		out.Results[g.Tab.Label] = items
	}
	for tab, vote := range r.Feedback {
		out.Feedback[tab] = vote
	}
	return json.MarshalIndent(out, "", "  ")
}
