package helpers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/schema"
)

func loadSample(t *testing.T) engine.RecordView {
	t.Helper()
	records, err := Load(context.Background(), assessmentCSV, "assessments.csv", schema.Default())
	require.NoError(t, err)
	return engine.NewSliceView(records)
}

func TestWriteTableCSV_RoundTrip(t *testing.T) {
	view := loadSample(t)

	for _, kind := range engine.ViewKinds {
		t.Run(string(kind), func(t *testing.T) {
			result, err := engine.Execute(context.Background(), engine.ViewSpec{View: kind}, view)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteTableCSV(&buf, result.TableData))

			table, err := ReadTableCSV(&buf)
			require.NoError(t, err)

			assert.Equal(t, result.TableData.Headers(), table.Headers())
			assert.Len(t, table.Rows, len(result.TableData.Rows))
			assert.Equal(t, result.TableData.Rows, table.Rows)
		})
	}
}

func TestWriteTableCSV_LabelsSurvive(t *testing.T) {
	result, err := engine.Execute(context.Background(), engine.ViewSpec{View: engine.ViewFinal}, loadSample(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, result.TableData))
	table, err := ReadTableCSV(&buf)
	require.NoError(t, err)

	want := make(map[string]bool)
	for _, row := range result.TableData.Rows {
		want[row[0]] = true
	}
	got := make(map[string]bool)
	for _, row := range table.Rows {
		got[row[0]] = true
	}
	assert.Equal(t, want, got)
	assert.Equal(t, engine.ColLabel, table.Columns[0].Key)
}

func TestWriteTableCSV_EmptySelection(t *testing.T) {
	spec := engine.ViewSpec{
		View:    engine.ViewUnderqualified,
		Filters: engine.Filters{Department: "Nobody works here"},
	}
	result, err := engine.Execute(context.Background(), spec, loadSample(t))
	require.NoError(t, err)
	require.True(t, result.Empty)

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, result.TableData))
	assert.Equal(t, "Collaborator,Competencies\n", buf.String())

	table, err := ReadTableCSV(&buf)
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestWriteTableCSV_QuotesNames(t *testing.T) {
	table := &engine.TableData{
		Columns: []engine.Column{{Key: engine.ColLabel}, {Key: engine.ColCollaboratorNames}},
		Rows:    [][]string{{"Confirmed", "Alice, Bob"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, table))
	assert.Equal(t, "Label,Collaborator_names\nConfirmed,\"Alice, Bob\"\n", buf.String())
}

func TestWriteTableCSV_NilTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteTableCSV(&buf, nil))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "self_assessment_data.csv", ExportFilename(engine.ViewSelf))
	assert.Equal(t, "department_summary_data.csv", ExportFilename(engine.ViewDepartment))
	assert.Equal(t, "underqualified_data.csv", ExportFilename(engine.ViewUnderqualified))
	assert.Equal(t, "report.csv", ExportFilename(engine.ViewKind("other")))
}
