package findings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatText(t *testing.T) {
	assert.Equal(t, "", FormatText(""))
	assert.Equal(t, `<p class="mb-3"><strong>Bold</strong> and <em>soft</em></p>`, FormatText("**Bold** and *soft*"))
	assert.Equal(t,
		`<p class="mb-3"><h3 class="text-lg font-semibold my-2">Spacing</h3></p><p class="mb-3">• one<br/>`+"\n"+`• two<br/></p>`,
		FormatText("## Spacing\n\n- one\n- two"))
	assert.Equal(t, `<p class="mb-3">1. first<br/>`+"\n"+`2. second<br/></p>`, FormatText("1. first\n2. second"))
}

func TestExtractParts(t *testing.T) {
	p := ExtractParts("Low contrast\nBody text fails AA. Solution: darken the text to #333.")
	assert.Equal(t, "Low contrast", p.Title)
	assert.Equal(t, "Body text fails AA.", p.Details)
	assert.Equal(t, "darken the text to #333.", p.Solution)

	p = ExtractParts("Buttons look alike\nYou could implement a primary style for the main action.")
	assert.Equal(t, "implement a primary style for the main action.", p.Solution)

	assert.Equal(t, Parts{}, ExtractParts(""))
}

func TestExtractParts_LongFirstLine(t *testing.T) {
	long := "Short start. " + strings.Repeat("and then it keeps going ", 6)
	p := ExtractParts(long)
	assert.Equal(t, "Short start", p.Title)
}

func TestClassifyText(t *testing.T) {
	assert.Equal(t, StatusIssue, ClassifyText("Poor contrast", ConfidenceHigh))
	assert.Equal(t, StatusIssue, ClassifyText("Looks fine", ConfidenceLow))
	assert.Equal(t, StatusSuggestion, ClassifyText("Consider a grid", ConfidenceHigh))
	assert.Equal(t, StatusSuggestion, ClassifyText("Looks fine", ConfidenceMedium))
	assert.Equal(t, StatusInfo, ClassifyText("Looks fine", ConfidenceHigh))
	assert.Equal(t, StatusInfo, ClassifyText("", ConfidenceLow))
	// known false positive of the keyword heuristic
	assert.Equal(t, StatusIssue, ClassifyText("An error-free layout", ConfidenceHigh))
}
