package helpers

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/spektr-org/skillscope/engine"
)

// ============================================================================
// CSV EXPORT: engine.TableData ⇄ CSV
// ============================================================================
// The header row is the column keys (Label, Collaborator_count, ...).
// An empty table still exports its header row.
// ============================================================================

// WriteTableCSV writes a table as CSV.
func WriteTableCSV(w io.Writer, table *engine.TableData) error {
	if table == nil {
		return errors.New("no table to export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers()); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}

// ReadTableCSV parses CSV produced by WriteTableCSV back into a table.
// Column labels are not part of the export and come back equal to keys.
func ReadTableCSV(r io.Reader) (*engine.TableData, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV headers")
	}

	table := &engine.TableData{
		Columns: make([]engine.Column, len(headers)),
		Rows:    [][]string{},
	}
	for i, h := range headers {
		table.Columns[i] = engine.Column{Key: h, Label: h, Type: "text", Align: "left"}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read CSV row")
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ExportFilename suggests a download name for a view's CSV.
func ExportFilename(view engine.ViewKind) string {
	switch view {
	case engine.ViewSelf:
		return "self_assessment_data.csv"
	case engine.ViewFinal:
		return "final_assessment_data.csv"
	case engine.ViewDepartment:
		return "department_summary_data.csv"
	case engine.ViewAlerts:
		return "alerts_data.csv"
	case engine.ViewUnderqualified:
		return "underqualified_data.csv"
	case engine.ViewComparison:
		return "comparison_data.csv"
	default:
		return "report.csv"
	}
}
