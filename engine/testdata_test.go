package engine

// ============================================================================
// TEST DATA
// ============================================================================

const railway = DefaultAlertDomain

func rec(collaborator, department, domain, competency string, self, final, required Level) AssessmentRecord {
	return AssessmentRecord{
		Collaborator:    collaborator,
		Department:      department,
		Domain:          domain,
		Subdomain:       domain + " / core",
		Competency:      competency,
		SelfAssessment:  self,
		FinalAssessment: final,
		RequiredLevel:   required,
	}
}

var (
	none = Level{}
	l0   = LevelOf(0)
	l1   = LevelOf(1)
	l2   = LevelOf(2)
	l3   = LevelOf(3)
	l4   = LevelOf(4)
	l5   = LevelOf(5)
)

// sampleRecords mixes both scales, a missing level and an unmapped one.
func sampleRecords() []AssessmentRecord {
	return []AssessmentRecord{
		rec("Alice", "Maintenance", railway, "Signalling", l2, l3, l3),
		rec("Bob", "Maintenance", railway, "Signalling", l3, l4, l3),
		rec("Chloe", "Operations", railway, "Signalling", l3, l3, none),
		rec("David", "Operations", railway, "Signalling", l1, none, l2),
		rec("Alice", "Maintenance", railway, "Catenary", l4, l2, l3),
		rec("Emma", "Operations", railway, "Catenary", l2, LevelOf(9), l1),
		rec("Alice", "Maintenance", DefaultLinguisticDomain, "English", l3, l5, l4),
		rec("Bob", "Maintenance", DefaultLinguisticDomain, "English", l1, l2, l4),
		rec("Chloe", "Operations", "Management", "Leadership", l0, l1, none),
	}
}

func sampleView() RecordView {
	return NewSliceView(sampleRecords())
}

func collaboratorNames(view RecordView) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, DimCollaborator)
	}
	return out
}
