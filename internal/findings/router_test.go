package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	tabs := DefaultCatalog().Tabs()
	require.Len(t, tabs, 5)
	assert.Equal(t, "visual", tabs[0].Key)
	assert.Equal(t, "Gestalt Design Analysis", tabs[4].Label)

	tab, ok := DefaultCatalog().Lookup("UX-LAWS")
	assert.True(t, ok)
	assert.Equal(t, "UX Laws Design Analysis", tab.Label)

	tab, ok = DefaultCatalog().Lookup("colour")
	assert.False(t, ok)
	assert.Equal(t, "Analysis Results", tab.Label)
	assert.Equal(t, "Detailed analysis of UI design elements.", tab.Description)
}

func TestParseCatalog_Rejects(t *testing.T) {
	_, err := ParseCatalog([]byte("tabs: []"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte("tabs:\n  - key: a\n    label: A\n  - key: A\n    label: B\n"))
	assert.Error(t, err)
	_, err = ParseCatalog([]byte("tabs: ["))
	assert.Error(t, err)
}

func TestRoute(t *testing.T) {
	all := []NormalizedFinding{
		{Label: "a", Category: "visual"},
		{Label: "b", Category: "Cognitive"},
		{Label: "c", Category: "Visual Design Analysis"},
	}

	sec := Route(all, "visual", true)
	assert.Equal(t, "Visual Design Analysis", sec.Title)
	require.Len(t, sec.Items, 2)
	assert.Equal(t, "a", sec.Items[0].Label)
	assert.Equal(t, "c", sec.Items[1].Label)

	sec = Route(all, "cognitive", true)
	require.Len(t, sec.Items, 1)
}

func TestRoute_Placeholder(t *testing.T) {
	sec := Route([]NormalizedFinding{{Category: "visual"}}, "gestalt", true)
	require.Len(t, sec.Items, 1)
	p := sec.Items[0]
	assert.Equal(t, "gestalt", p.Category)
	assert.Equal(t, "Gestalt Design Analysis", p.Label)
	assert.Equal(t, ConfidenceNA, p.Confidence)
	assert.Equal(t, StatusInfo, p.Status)
	assert.Equal(t, "No analysis results found for this category.", p.Response)
	assert.False(t, p.IsPositive)
}

func TestRoute_BeforeAnalysis(t *testing.T) {
	sec := Route(nil, "visual", false)
	assert.Empty(t, sec.Items)
}

func TestRoute_UnknownTabFailsClosed(t *testing.T) {
	sec := Route([]NormalizedFinding{{Category: "nope"}}, "nope", true)
	assert.Equal(t, "Analysis Results", sec.Title)
	require.Len(t, sec.Items, 1)
	assert.Equal(t, noResultsResponse, sec.Items[0].Response)
	assert.Equal(t, "nope", sec.Items[0].Category)
}

func TestUnrouted(t *testing.T) {
	got := DefaultCatalog().Unrouted([]NormalizedFinding{InvalidImageFinding(), {Category: "visual"}})
	require.Len(t, got, 1)
	assert.Equal(t, "error", got[0].Category)
}
