package findings

import (
	"regexp"
	"strings"
)

var implementationPattern = regexp.MustCompile(`(?i)(?:implement|use|add|create|apply|reduce|increase|decrease|modify|change|update)(.*?)(?:\.|\n|$)`)

// ExtractSolution pulls a concise, actionable phrase out of a recommendation.
// It prefers the first imperative verb phrase and falls back to the first
// sentence.
func ExtractSolution(description string) string {
	if description == "" {
		return ""
	}
	if m := implementationPattern.FindString(description); m != "" {
		return strings.TrimSpace(m)
	}
	first, _, _ := strings.Cut(description, ".")
	return strings.TrimSpace(first)
}

var (
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern   = regexp.MustCompile(`\*(.*?)\*`)
	headerPattern   = regexp.MustCompile(`(?m)^#{1,6}\s+(.*)$`)
	bulletPattern   = regexp.MustCompile(`(?m)^-\s+(.*)$`)
	numberedPattern = regexp.MustCompile(`(?m)^(\d+)\.\s+(.*)$`)
)

// FormatText renders the loose markdown subset used in collaborator text as
// HTML. The output is not sanitized and must only carry trusted content.
func FormatText(text string) string {
	if text == "" {
		return ""
	}
	processed := boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	processed = italicPattern.ReplaceAllString(processed, "<em>${1}</em>")
	processed = headerPattern.ReplaceAllString(processed, `<h3 class="text-lg font-semibold my-2">${1}</h3>`)
	processed = bulletPattern.ReplaceAllString(processed, "• ${1}<br/>")
	processed = numberedPattern.ReplaceAllString(processed, "${1}. ${2}<br/>")

	var sb strings.Builder
	for _, paragraph := range strings.Split(processed, "\n\n") {
		sb.WriteString(`<p class="mb-3">`)
		sb.WriteString(paragraph)
		sb.WriteString("</p>")
	}
	return sb.String()
}

// Parts is a free-text response split into display fields.
type Parts struct {
	Title    string
	Details  string
	Solution string
}

const maxTitleLen = 100

var solutionSections = []*regexp.Regexp{
	regexp.MustCompile(`(?is)Solution:\s*(.+)`),
	regexp.MustCompile(`(?is)Recommendation:\s*(.+)`),
	regexp.MustCompile(`(?is)Suggested fix:\s*(.+)`),
	regexp.MustCompile(`(?is)How to fix:\s*(.+)`),
	regexp.MustCompile(`(?is)To improve:\s*(.+)`),
}

var implementAPattern = regexp.MustCompile(`(?is)implement\s+a\s+.+`)

// ExtractParts splits a free-text response into a short title, the remaining
// details and, when one is labelled, a solution section.
func ExtractParts(response string) Parts {
	if response == "" {
		return Parts{}
	}

	var p Parts
	details := response
	firstLine, _, _ := strings.Cut(response, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if firstLine != "" && len(firstLine) < maxTitleLen {
		p.Title = firstLine
		details = strings.TrimSpace(strings.Replace(response, firstLine, "", 1))
	} else {
		firstSentence, _, _ := strings.Cut(response, ".")
		if firstSentence != "" && len(firstSentence) < maxTitleLen {
			p.Title = firstSentence
			details = strings.TrimSpace(strings.Replace(response, firstSentence, "", 1))
		}
	}

	for _, re := range solutionSections {
		loc := re.FindStringSubmatchIndex(details)
		if loc == nil {
			continue
		}
		p.Solution = strings.TrimSpace(details[loc[2]:loc[3]])
		details = strings.TrimSpace(details[:loc[0]] + details[loc[1]:])
		break
	}
	if p.Solution == "" {
		if m := implementAPattern.FindString(details); m != "" {
			p.Solution = strings.TrimSpace(m)
		}
	}
	p.Details = details
	return p
}

var (
	issueKeywords      = []string{"issue", "problem", "error", "poor", "inconsistent"}
	suggestionKeywords = []string{"suggestion", "recommend", "consider", "improve", "enhance", "standardize"}
)

// ClassifyText guesses a status from keywords in free text. It is a
// heuristic: incidental words such as "error-free" are misread as issues.
func ClassifyText(response string, confidence Confidence) Status {
	if response == "" {
		return StatusInfo
	}
	lower := strings.ToLower(response)
	if containsAny(lower, issueKeywords) || confidence == ConfidenceLow {
		return StatusIssue
	}
	if containsAny(lower, suggestionKeywords) || confidence == ConfidenceMedium {
		return StatusSuggestion
	}
	return StatusInfo
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
