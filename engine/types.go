package engine

// ============================================================================
// ENGINE TYPES: Assessment records, view specs and render-ready results
// ============================================================================
// Records are the loaded dataset; the engine reads them through RecordView.
// Results are what consumers render: chart series, tables, totals.
//
// Dependency: engine depends on logrus (via logger) and pkg/errors only.
// ============================================================================

// ============================================================================
// RECORD: One row per (collaborator, competency)
// ============================================================================

// Level is an assessment level read from the spreadsheet.
// The zero value is a missing level (blank cell).
type Level struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// LevelOf returns a present level.
func LevelOf(v int) Level {
	return Level{Value: v, Valid: true}
}

// Missing reports whether the level cell was blank.
func (l Level) Missing() bool { return !l.Valid }

// AssessmentRecord is a single assessment row.
type AssessmentRecord struct {
	Collaborator    string `json:"collaborator"`
	Department      string `json:"department"`
	Domain          string `json:"competencyDomain"`
	Subdomain       string `json:"competencySubdomain"`
	Competency      string `json:"competency"`
	SelfAssessment  Level  `json:"selfAssessmentLevel"`
	FinalAssessment Level  `json:"finalAssessmentLevel"`
	RequiredLevel   Level  `json:"requiredLevel"`
}

// Dimension keys understood by RecordView.Dimension and Filters.
const (
	DimCollaborator = "collaborator"
	DimDepartment   = "department"
	DimDomain       = "competency_domain"
	DimSubdomain    = "competency_subdomain"
	DimCompetency   = "competency"
)

// LevelKind selects one of the three level columns of a record.
type LevelKind string

const (
	SelfAssessment  LevelKind = "self_assessment"
	FinalAssessment LevelKind = "final_assessment"
	RequiredLevel   LevelKind = "required_level"
)

// ============================================================================
// VIEWSPEC: What the host asks the engine to compute
// ============================================================================

// ViewKind names a report view.
type ViewKind string

const (
	ViewSelf           ViewKind = "self"
	ViewFinal          ViewKind = "final"
	ViewComparison     ViewKind = "comparison"
	ViewDepartment     ViewKind = "department"
	ViewAlerts         ViewKind = "alerts"
	ViewUnderqualified ViewKind = "underqualified"
)

// ViewKinds lists every supported view in menu order.
var ViewKinds = []ViewKind{ViewSelf, ViewFinal, ViewComparison, ViewDepartment, ViewAlerts, ViewUnderqualified}

// ParseViewKind validates a view name.
func ParseViewKind(s string) (ViewKind, bool) {
	for _, k := range ViewKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ViewSpec defines which view to compute over which selection.
type ViewSpec struct {
	View    ViewKind `json:"view"`
	Filters Filters  `json:"filters"`
	Title   string   `json:"title,omitempty"` // empty → derived from the view and filters
}

// Filters are optional equality filters. An empty field is unset.
// All set fields are AND-combined.
type Filters struct {
	Domain       string `json:"domain,omitempty"`
	Competency   string `json:"competency,omitempty"`
	Collaborator string `json:"collaborator,omitempty"`
	Department   string `json:"department,omitempty"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	return f.Domain == "" && f.Competency == "" && f.Collaborator == "" && f.Department == ""
}

// dimensions returns the set filters keyed by dimension.
func (f Filters) dimensions() map[string]string {
	dims := make(map[string]string, 4)
	if f.Domain != "" {
		dims[DimDomain] = f.Domain
	}
	if f.Competency != "" {
		dims[DimCompetency] = f.Competency
	}
	if f.Collaborator != "" {
		dims[DimCollaborator] = f.Collaborator
	}
	if f.Department != "" {
		dims[DimDepartment] = f.Department
	}
	return dims
}

// ============================================================================
// GROUP: Intermediate aggregation result
// ============================================================================

// Group is a set of collaborators sharing a resolved label (and, for the
// department view, a department).
type Group struct {
	Department string     `json:"department,omitempty"`
	Label      string     `json:"label"`
	Count      int        `json:"collaboratorCount"`
	Names      []string   `json:"collaboratorNames"`
	View       RecordView `json:"-"` // rows in this group (zero-copy)
}

// Alert is a competency whose count of collaborators at Label is below
// Threshold.
type Alert struct {
	Competency string   `json:"competency"`
	Label      string   `json:"label"`
	Count      int      `json:"collaboratorCount"`
	Names      []string `json:"collaboratorNames"`
	Threshold  int      `json:"threshold"`
}

// Shortfall lists the competencies where a collaborator's final level is
// below the required level.
type Shortfall struct {
	Collaborator string   `json:"collaborator"`
	Competencies []string `json:"competencies"`
}

// ============================================================================
// RESULT: Render-ready output
// ============================================================================

// Result is the engine's render-ready output for one view.
type Result struct {
	View    ViewKind `json:"view"`
	Title   string   `json:"title"`
	Reply   string   `json:"reply"`
	Empty   bool     `json:"empty"`
	Records int      `json:"records"` // rows in the selection

	Context     *SelectionContext `json:"context,omitempty"`
	ChartConfig *ChartConfig      `json:"chartConfig,omitempty"`
	TableData   *TableData        `json:"tableData"`
	Totals      []Total           `json:"totals,omitempty"`
}

// SelectionContext describes the competency being looked at.
type SelectionContext struct {
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
}

// Total is a single headline figure (e.g. confirmed collaborators overall).
type Total struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "pie", "bar", "stacked_bar"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Share   float64 `json:"share,omitempty"`   // proportion of the series total, pie charts only
	Missing bool    `json:"missing,omitempty"` // level not assessed
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render (and export) a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column. Key doubles as the CSV header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "center", "right"
}

// Headers returns the column keys in order.
func (t *TableData) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Key
	}
	return headers
}
