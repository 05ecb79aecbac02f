package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ui-feedback-backend/internal/export"
	"ui-feedback-backend/internal/findings"
)

type options struct {
	catalogPath string
	asJSON      bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &options{}
	u := ui{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "uifeedback",
		Short:         "Inspect and export UI analysis results offline",
		Long:          "uifeedback normalizes raw collaborator output, routes it into tabs and renders reports without a running API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "YAML tab catalog (default built-in)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of a table")

	root.AddCommand(
		newTabsCmd(opts, u),
		newNormalizeCmd(opts, u),
		newTabCmd(opts, u),
		newExportCmd(opts, u),
		newFormatCmd(u),
	)
	return root
}

func (o *options) catalog() (*findings.Catalog, error) {
	if o.catalogPath == "" {
		return findings.DefaultCatalog(), nil
	}
	data, err := os.ReadFile(o.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return findings.ParseCatalog(data)
}

func newTabsCmd(opts *options, u ui) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the analysis tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(u.out, cat.Tabs())
			}
			table := u.table("KEY", "LABEL", "DESCRIPTION")
			for _, t := range cat.Tabs() {
				_ = table.Append([]string{t.Key, t.Label, t.Description})
			}
			return table.Render()
		},
	}
}

func newNormalizeCmd(opts *options, u ui) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <results.json>",
		Short: "Normalize a raw collaborator response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := loadNormalized(args[0])
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(u.out, normalized)
			}
			if len(normalized) == 0 {
				u.warning("no findings in %s", args[0])
				return nil
			}
			return u.findingsTable(normalized)
		},
	}
}

func newTabCmd(opts *options, u ui) *cobra.Command {
	return &cobra.Command{
		Use:   "tab <results.json> <tab>",
		Short: "Show the findings routed to one tab",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			normalized, err := loadNormalized(args[0])
			if err != nil {
				return err
			}
			section := cat.Route(normalized, args[1], true)
			if opts.asJSON {
				return writeJSON(u.out, section)
			}
			fmt.Fprintf(u.out, "%s\n%s\n\n", section.Title, section.Description)
			return u.findingsTable(section.Items)
		},
	}
}

func newExportCmd(opts *options, u ui) *cobra.Command {
	var format, imagePath, outPath, title string
	cmd := &cobra.Command{
		Use:   "export <results.json>",
		Short: "Render a report as HTML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			normalized, err := loadNormalized(args[0])
			if err != nil {
				return err
			}
			if len(normalized) == 0 {
				return fmt.Errorf("no analysis results to export")
			}
			report := export.Report{
				Title:       title,
				GeneratedAt: time.Now(),
				Findings:    normalized,
				Catalog:     cat,
			}
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				report.Image = &export.Image{ContentType: http.DetectContentType(data), Data: data}
			}

			var body []byte
			defaultName := export.HTMLFileName
			switch strings.ToLower(format) {
			case "", "html":
				body = []byte(export.HTML(report))
			case "json":
				body, err = export.JSON(report)
				if err != nil {
					return err
				}
				defaultName = export.JSONFileName
			default:
				return fmt.Errorf("unknown format %q (use: html, json)", format)
			}

			if outPath == "-" {
				_, err := u.out.Write(body)
				return err
			}
			if outPath == "" {
				outPath = defaultName
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			u.success("wrote %s (%d bytes)", outPath, len(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "Output format: html, json")
	cmd.Flags().StringVar(&imagePath, "image", "", "Screenshot to embed in HTML reports")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file, - for stdout (default report file name)")
	cmd.Flags().StringVar(&title, "title", "", "Report title")
	return cmd
}

func newFormatCmd(u ui) *cobra.Command {
	return &cobra.Command{
		Use:   "format <text-file>",
		Short: "Render collaborator markdown text as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(u.out, findings.FormatText(string(data)))
			return err
		},
	}
}

func loadNormalized(path string) ([]findings.NormalizedFinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	raw, err := findings.DecodeRaw(data)
	if err != nil {
		return nil, err
	}
	return findings.Normalize(raw), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
