package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER: Produces TableData (and therefore CSV) from aggregates
// ============================================================================
// Column keys are the CSV headers; labels are for on-screen rendering.
// Every builder returns headers even when there are no rows, so empty
// selections still export a well-formed CSV.
// ============================================================================

// CSV header keys.
const (
	ColLabel             = "Label"
	ColDepartment        = "Department"
	ColCompetency        = "Competency"
	ColCollaborator      = "Collaborator"
	ColCollaboratorCount = "Collaborator_count"
	ColCollaboratorNames = "Collaborator_names"
	ColCompetencies      = "Competencies"
	ColSelf              = "Self_assessment"
	ColSelfLabel         = "Self_assessment_label"
	ColFinal             = "Final_assessment"
	ColFinalLabel        = "Final_assessment_label"
)

func textColumn(key, label string) Column {
	return Column{Key: key, Label: label, Type: "text", Align: "left"}
}

func countColumn() Column {
	return Column{Key: ColCollaboratorCount, Label: "Collaborators", Type: "number", Align: "right"}
}

func namesColumn() Column {
	return textColumn(ColCollaboratorNames, "Names")
}

// BuildLabelTable renders label groups as Label, Collaborator_count,
// Collaborator_names.
func BuildLabelTable(title string, groups []Group) *TableData {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Label, strconv.Itoa(g.Count), JoinNames(g.Names)})
	}
	return &TableData{
		Title:   title,
		Columns: []Column{textColumn(ColLabel, "Label"), countColumn(), namesColumn()},
		Rows:    rows,
	}
}

// BuildDepartmentTable renders (department, label) groups.
func BuildDepartmentTable(title string, groups []Group) *TableData {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Department, g.Label, strconv.Itoa(g.Count), JoinNames(g.Names)})
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			textColumn(ColDepartment, "Department"),
			textColumn(ColLabel, "Label"),
			countColumn(),
			namesColumn(),
		},
		Rows: rows,
	}
}

// BuildAlertTable renders threshold alerts.
func BuildAlertTable(title string, alerts []Alert) *TableData {
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{a.Competency, a.Label, strconv.Itoa(a.Count), JoinNames(a.Names)})
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			textColumn(ColCompetency, "Competency"),
			textColumn(ColLabel, "Label"),
			countColumn(),
			namesColumn(),
		},
		Rows: rows,
	}
}

// BuildUnderqualifiedTable renders shortfalls as Collaborator, Competencies.
func BuildUnderqualifiedTable(title string, shortfalls []Shortfall) *TableData {
	rows := make([][]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		rows = append(rows, []string{s.Collaborator, JoinNames(s.Competencies)})
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			textColumn(ColCollaborator, "Collaborator"),
			textColumn(ColCompetencies, "Competencies"),
		},
		Rows: rows,
	}
}

// BuildComparisonTable renders one row per record with both levels and
// their labels. Missing levels export as empty cells.
func BuildComparisonTable(title string, view RecordView, opts ...Option) *TableData {
	cfg := applyOptions(opts)
	rows := make([][]string, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		domain := view.Dimension(i, DimDomain)
		self := view.Level(i, SelfAssessment)
		final := view.Level(i, FinalAssessment)
		rows = append(rows, []string{
			view.Dimension(i, DimCompetency),
			formatLevel(self),
			resolveLabel(cfg, domain, self),
			formatLevel(final),
			resolveLabel(cfg, domain, final),
		})
	}
	return &TableData{
		Title: title,
		Columns: []Column{
			textColumn(ColCompetency, "Competency"),
			{Key: ColSelf, Label: "Self", Type: "number", Align: "center"},
			textColumn(ColSelfLabel, "Self label"),
			{Key: ColFinal, Label: "Final", Type: "number", Align: "center"},
			textColumn(ColFinalLabel, "Final label"),
		},
		Rows: rows,
	}
}

func formatLevel(l Level) string {
	if l.Missing() {
		return ""
	}
	return strconv.Itoa(l.Value)
}
