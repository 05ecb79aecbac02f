package export

import (
	"fmt"
	"html"
	"strings"

	"ui-feedback-backend/internal/findings"
)

type statusStyle struct {
	color      string
	background string
	icon       string
}

var statusStyles = map[findings.Status]statusStyle{
	findings.StatusIssue:      {color: "#f87171", background: "#fee2e2", icon: "⚠️"},
	findings.StatusSuggestion: {color: "#4ade80", background: "#dcfce7", icon: "✅"},
	findings.StatusInfo:       {color: "#60a5fa", background: "#dbeafe", icon: "ℹ️"},
}

type badgeStyle struct {
	background string
	color      string
}

var confidenceBadges = map[findings.Confidence]badgeStyle{
	findings.ConfidenceHigh:   {background: "#dcfce7", color: "#166534"},
	findings.ConfidenceMedium: {background: "#fef3c7", color: "#92400e"},
	findings.ConfidenceLow:    {background: "#fee2e2", color: "#991b1b"},
}

// HTML renders a standalone styled report. Tabs without findings are left out.
func HTML(r Report) string {
	title := html.EscapeString(r.title())

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>`)
	sb.WriteString(title)
	sb.WriteString(`</title>
<style>
body { font-family: system-ui, -apple-system, sans-serif; line-height: 1.5; color: #374151; max-width: 800px; margin: 0 auto; padding: 20px; }
h1 { color: #1f2937; margin-bottom: 24px; }
img { max-width: 100%; border-radius: 8px; margin-bottom: 24px; }
@media print {
  body { padding: 0; }
  h1 { margin-top: 0; }
}
</style>
</head>
<body>
`)
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", title)
	if r.Image != nil && len(r.Image.Data) > 0 {
		fmt.Fprintf(&sb, "<img src=\"%s\" alt=\"Analyzed UI\" />\n", html.EscapeString(r.Image.DataURI()))
	}

	for _, g := range r.groups() {
		if len(g.Items) == 0 {
			continue
		}
		writeSection(&sb, g)
	}

	fmt.Fprintf(&sb, `<div style="margin-top: 30px; font-size: 12px; color: #6b7280; text-align: center;">Generated by UI Feedback Tool on %s</div>
</body>
</html>
`, r.generatedAt().Format("January 2, 2006"))
	return sb.String()
}

func writeSection(sb *strings.Builder, g group) {
	sb.WriteString(`<div style="margin-bottom: 20px; page-break-inside: avoid;">` + "\n")
	fmt.Fprintf(sb, "<h2 style=\"color: #2563eb; margin-bottom: 10px;\">%s</h2>\n", html.EscapeString(g.Tab.Label))
	sb.WriteString(`<div style="border: 1px solid #e5e7eb; border-radius: 8px; overflow: hidden;">` + "\n")
	for _, f := range g.Items {
		writeFinding(sb, f)
	}
	sb.WriteString("</div>\n</div>\n")
}

func writeFinding(sb *strings.Builder, f findings.NormalizedFinding) {
	style, ok := statusStyles[f.Status]
	if !ok {
		style = statusStyles[findings.StatusInfo]
	}

	sb.WriteString(`<div style="padding: 15px; border-bottom: 1px solid #e5e7eb;"><div style="display: flex; align-items: flex-start;">`)
	fmt.Fprintf(sb, `<div style="margin-right: 15px; width: 24px; height: 24px; border-radius: 50%%; background-color: %s; display: flex; align-items: center; justify-content: center;">`, style.background)
	fmt.Fprintf(sb, `<div style="width: 16px; height: 16px; color: %s;">%s</div></div>`, style.color, style.icon)

	sb.WriteString(`<div style="flex: 1;"><div style="display: flex; align-items: center; margin-bottom: 8px;">`)
	if badge, ok := confidenceBadges[f.Confidence]; ok {
		fmt.Fprintf(sb, `<span style="background-color: %s; color: %s; padding: 4px 8px; border-radius: 9999px; font-size: 12px; font-weight: 600; margin-right: 8px;">%s</span>`,
			badge.background, badge.color, html.EscapeString(string(f.Confidence)))
	}
	fmt.Fprintf(sb, `<h3 style="font-weight: 500; color: #1f2937;">%s</h3></div>`, html.EscapeString(f.Label))

	body := f.Details
	if body == "" {
		body = f.Response
	}
	fmt.Fprintf(sb, `<div style="font-size: 14px; line-height: 1.5; color: #4b5563; margin-bottom: 12px;">%s</div>`, html.EscapeString(body))

	if f.Solution != nil && *f.Solution != "" {
		sb.WriteString(`<div style="margin-top: 12px; padding-top: 12px; border-top: 1px solid #f3f4f6;">`)
		sb.WriteString(`<div style="display: flex; align-items: center; color: #059669; margin-bottom: 4px;"><span style="margin-right: 4px;">🛡️</span><span style="font-weight: 500;">Solution</span></div>`)
		fmt.Fprintf(sb, `<p style="font-size: 14px; color: #4b5563; padding-left: 20px;">%s</p></div>`, html.EscapeString(*f.Solution))
	}
	sb.WriteString("</div></div></div>\n")
}
