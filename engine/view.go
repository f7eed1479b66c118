package engine

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns or mutates the loaded dataset. It reads through
// this interface.
//
// Implementations:
//   SliceView: wraps []AssessmentRecord (the loaded spreadsheet)
//   SubView:   filtered or grouped subset (indices into parent, zero-copy)
//
// Filtering and grouping produce SubViews, so every report view is a fresh
// projection over the same rows.
// ============================================================================

// RecordView provides indexed access to a dataset.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Level(index int, kind LevelKind) Level
	Record(index int) AssessmentRecord
}

// ============================================================================
// SLICE VIEW: wraps []AssessmentRecord
// ============================================================================

// SliceView wraps an []AssessmentRecord slice as a RecordView.
type SliceView struct {
	records []AssessmentRecord
}

// NewSliceView creates a RecordView from loaded records.
func NewSliceView(records []AssessmentRecord) RecordView {
	return &SliceView{records: records}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return dimensionOf(&v.records[i], key)
}

func (v *SliceView) Level(i int, kind LevelKind) Level {
	if i < 0 || i >= len(v.records) {
		return Level{}
	}
	return levelOf(&v.records[i], kind)
}

func (v *SliceView) Record(i int) AssessmentRecord {
	if i < 0 || i >= len(v.records) {
		return AssessmentRecord{}
	}
	return v.records[i]
}

func dimensionOf(r *AssessmentRecord, key string) string {
	switch key {
	case DimCollaborator:
		return r.Collaborator
	case DimDepartment:
		return r.Department
	case DimDomain:
		return r.Domain
	case DimSubdomain:
		return r.Subdomain
	case DimCompetency:
		return r.Competency
	default:
		return ""
	}
}

func levelOf(r *AssessmentRecord, kind LevelKind) Level {
	switch kind {
	case SelfAssessment:
		return r.SelfAssessment
	case FinalAssessment:
		return r.FinalAssessment
	case RequiredLevel:
		return r.RequiredLevel
	default:
		return Level{}
	}
}

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent RecordView.
// Holds indices into the parent in parent order, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Level(i int, kind LevelKind) Level {
	if i < 0 || i >= len(v.indices) {
		return Level{}
	}
	return v.parent.Level(v.indices[i], kind)
}

func (v *SubView) Record(i int) AssessmentRecord {
	if i < 0 || i >= len(v.indices) {
		return AssessmentRecord{}
	}
	return v.parent.Record(v.indices[i])
}

// Records materializes a view into a slice, in view order.
func Records(view RecordView) []AssessmentRecord {
	out := make([]AssessmentRecord, view.Len())
	for i := range out {
		out[i] = view.Record(i)
	}
	return out
}
