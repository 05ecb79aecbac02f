package findings

const noResultsResponse = "No analysis results found for this category."

// Section is the subset of findings displayed under one tab.
type Section struct {
	Tab         string              `json:"tab"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Items       []NormalizedFinding `json:"items"`
}

// Route selects the findings for tabKey. When an analysis has run and nothing
// matches, a single placeholder finding stands in so the tab is never blank.
func (c *Catalog) Route(all []NormalizedFinding, tabKey string, analyzed bool) Section {
	tab, known := c.Lookup(tabKey)
	sec := Section{
		Tab:         tabKey,
		Title:       tab.Label,
		Description: tab.Description,
		Items:       []NormalizedFinding{},
	}
	if known {
		for _, f := range all {
			if tab.Matches(f.Category) {
				sec.Items = append(sec.Items, f)
			}
		}
	}
	if len(sec.Items) == 0 && analyzed {
		sec.Items = append(sec.Items, NormalizedFinding{
			Label:      tab.Label,
			Confidence: ConfidenceNA,
			Response:   noResultsResponse,
			Status:     StatusInfo,
			Category:   tabKey,
			Type:       ItemInfo,
			IsPositive: false,
		})
	}
	return sec
}

// Route is Catalog.Route on the built-in catalog.
func Route(all []NormalizedFinding, tabKey string, analyzed bool) Section {
	return defaultCatalog.Route(all, tabKey, analyzed)
}

// Unrouted returns findings that belong to no known tab, such as the
// invalid-image finding.
func (c *Catalog) Unrouted(all []NormalizedFinding) []NormalizedFinding {
	var out []NormalizedFinding
	for _, f := range all {
		if _, ok := c.TabFor(f.Category); !ok {
			out = append(out, f)
		}
	}
	return out
}
