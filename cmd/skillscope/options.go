package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/helpers"
	"github.com/spektr-org/skillscope/presenter"
)

func newOptionsCmd(a *app) *cobra.Command {
	var file, domain, format string

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the filter values found in an assessment spreadsheet",
		Long: `List the domains, competencies, collaborators and departments found in an
assessment spreadsheet. With --domain, competencies are narrowed to that domain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validFormat(format, resultFormats); err != nil {
				return err
			}

			records, err := helpers.LoadFile(cmd.Context(), file, a.schema)
			if err != nil {
				return err
			}
			catalog := engine.BuildCatalog(engine.NewSliceView(records), engine.Filters{Domain: domain})

			w := cmd.OutOrStdout()
			switch format {
			case formatTable:
				presenter.NewWithOptions(w, w, presenter.ColorNever).Table(catalogTable(catalog))
				return nil
			case formatCSV:
				return helpers.WriteTableCSV(w, catalogTable(catalog))
			default:
				return writeData(w, catalog, format)
			}
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Assessment spreadsheet (.xlsx, .xls or .csv)")
	cmd.Flags().StringVar(&domain, "domain", "", "Narrow competencies to this domain")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: json, pretty, yaml, csv, table")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// catalogTable lists each filter with its values, one row per filter.
func catalogTable(c engine.Catalog) *engine.TableData {
	row := func(name string, values []string) []string {
		return []string{name, strings.Join(values, ", ")}
	}
	return &engine.TableData{
		Title: "Filter values",
		Columns: []engine.Column{
			{Key: "Filter", Label: "Filter", Type: "text", Align: "left"},
			{Key: "Values", Label: "Values", Type: "text", Align: "left"},
		},
		Rows: [][]string{
			row("domain", c.Domains),
			row("competency", c.Competencies),
			row("collaborator", c.Collaborators),
			row("department", c.Departments),
		},
	}
}
