package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/helpers"
	"github.com/spektr-org/skillscope/presenter"
)

type reportOptions struct {
	file    string
	view    string
	filters engine.Filters
	title   string
	format  string
	out     string
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}

	views := make([]string, len(engine.ViewKinds))
	for i, k := range engine.ViewKinds {
		views[i] = string(k)
	}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute one report view over an assessment spreadsheet",
		Long: fmt.Sprintf(`Compute one report view over an assessment spreadsheet.

Views: %s

Formats:
  json      Full result: chart series, table and totals (default)
  pretty    Indented JSON
  yaml      The JSON result as YAML
  csv       The table, ready for Sheets or Excel
  table     Title, summary and a terminal table`, strings.Join(views, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Assessment spreadsheet (.xlsx, .xls or .csv)")
	f.StringVar(&opts.view, "view", string(engine.ViewSelf), "View to compute")
	f.StringVar(&opts.filters.Domain, "domain", "", "Competency domain filter")
	f.StringVar(&opts.filters.Competency, "competency", "", "Competency filter")
	f.StringVar(&opts.filters.Collaborator, "collaborator", "", "Collaborator filter")
	f.StringVar(&opts.filters.Department, "department", "", "Department filter")
	f.StringVar(&opts.title, "title", "", "Custom title")
	f.StringVar(&opts.format, "format", formatJSON, "Output format: json, pretty, yaml, csv, table")
	f.StringVarP(&opts.out, "out", "o", "", "Write output to file instead of stdout")
	f.String("alert-domain", "", "Domain checked by the alerts view")
	f.Int("alert-threshold", 0, "Alert when fewer collaborators hold a label")
	_ = cmd.MarkFlagRequired("file")

	_ = a.v.BindPFlag("alerts.domain", f.Lookup("alert-domain"))
	_ = a.v.BindPFlag("alerts.threshold", f.Lookup("alert-threshold"))

	return cmd
}

func (a *app) runReport(cmd *cobra.Command, opts *reportOptions) error {
	ctx := cmd.Context()

	kind, ok := engine.ParseViewKind(opts.view)
	if !ok {
		return errors.Wrapf(engine.ErrUnknownView, "view %q", opts.view)
	}
	if err := validFormat(opts.format, resultFormats); err != nil {
		return err
	}

	records, err := helpers.LoadFile(ctx, opts.file, a.schema)
	if err != nil {
		return err
	}

	spec := engine.ViewSpec{View: kind, Filters: opts.filters, Title: opts.title}
	result, err := engine.Execute(ctx, spec, engine.NewSliceView(records), a.cfg.EngineOptions()...)
	if err != nil {
		return err
	}

	w, closeOut, err := openOutput(cmd.OutOrStdout(), opts.out)
	if err != nil {
		return err
	}
	if err := writeResult(w, result, opts.format); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return errors.Wrap(err, "failed to close output file")
	}

	if opts.out != "" {
		p := presenter.NewWithOptions(cmd.ErrOrStderr(), cmd.ErrOrStderr(), presenter.ColorAuto)
		p.SetQuiet(a.quiet)
		p.Success(fmt.Sprintf("%s written to %s (%d rows)", result.Title, opts.out, len(result.TableData.Rows)))
	}
	return nil
}
