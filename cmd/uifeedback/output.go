package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"ui-feedback-backend/internal/findings"
)

var (
	successPrefix = color.New(color.FgHiGreen).Sprint("✓")
	warningPrefix = color.New(color.FgHiYellow).Sprint("⚠")
	red           = color.New(color.FgHiRed).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	cyan          = color.New(color.FgHiCyan).SprintFunc()
)

type ui struct {
	out    io.Writer
	errOut io.Writer
}

func (u ui) success(format string, a ...any) {
	fmt.Fprintf(u.errOut, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u ui) warning(format string, a ...any) {
	fmt.Fprintf(u.errOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u ui) table(headers ...string) *tablewriter.Table {
	table := tablewriter.NewTable(u.out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}

func statusColor(s findings.Status) string {
	switch s {
	case findings.StatusIssue:
		return red(string(s))
	case findings.StatusSuggestion:
		return green(string(s))
	default:
		return cyan(string(s))
	}
}

func (u ui) findingsTable(items []findings.NormalizedFinding) error {
	table := u.table("CATEGORY", "STATUS", "CONFIDENCE", "LABEL", "SOLUTION")
	for _, f := range items {
		solution := ""
		if f.Solution != nil {
			solution = *f.Solution
		}
		_ = table.Append([]string{f.Category, statusColor(f.Status), string(f.Confidence), f.Label, solution})
	}
	return table.Render()
}
