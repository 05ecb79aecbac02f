package export

import (
	"encoding/base64"
	"time"

	"ui-feedback-backend/internal/findings"
)

const (
	HTMLFileName = "ui-analysis-report.html"
	JSONFileName = "ui-analysis-report.json"

	defaultTitle = "UI Design Analysis Report"
)

// Image is the analyzed screenshot embedded in HTML reports.
type Image struct {
	ContentType string
	Data        []byte
}

// DataURI renders the image as an inline data URI.
func (i Image) DataURI() string {
	return "data:" + i.ContentType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Report is everything an exporter needs about one analysis run.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Image       *Image
	Findings    []findings.NormalizedFinding
	// Feedback maps tab keys to helpful / not-helpful votes.
	Feedback map[string]string
	Catalog  *findings.Catalog
}

type group struct {
	Tab   findings.Tab
	Items []findings.NormalizedFinding
}

// groups splits the report findings per tab in catalog order. Findings that
// match no tab are gathered under the catalog fallback, last.
func (r Report) groups() []group {
	catalog := r.catalog()
	tabs := catalog.Tabs()
	out := make([]group, 0, len(tabs)+1)
	for _, t := range tabs {
		g := group{Tab: t}
		for _, f := range r.Findings {
			if t.Matches(f.Category) {
				g.Items = append(g.Items, f)
			}
		}
		out = append(out, g)
	}
	fallback, _ := catalog.Lookup("")
	out = append(out, group{Tab: fallback, Items: catalog.Unrouted(r.Findings)})
	return out
}

func (r Report) catalog() *findings.Catalog {
	if r.Catalog != nil {
		return r.Catalog
	}
	return findings.DefaultCatalog()
}

func (r Report) title() string {
	if r.Title != "" {
		return r.Title
	}
	return defaultTitle
}

func (r Report) generatedAt() time.Time {
	if r.GeneratedAt.IsZero() {
		return time.Now().UTC()
	}
	return r.GeneratedAt
}
