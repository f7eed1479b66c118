package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupSummary drops the sub-view so groups compare by value.
type groupSummary struct {
	Department string
	Label      string
	Count      int
	Names      []string
}

func summarize(groups []Group) []groupSummary {
	out := make([]groupSummary, len(groups))
	for i, g := range groups {
		out[i] = groupSummary{g.Department, g.Label, g.Count, g.Names}
	}
	return out
}

func TestCountByLabel(t *testing.T) {
	signalling := ApplyFilters(sampleView(), Filters{Competency: "Signalling"})

	tests := []struct {
		name string
		view RecordView
		kind LevelKind
		want []groupSummary
	}{
		{
			name: "final assessment keeps first-appearance order",
			view: signalling,
			kind: FinalAssessment,
			want: []groupSummary{
				{Label: "Confirmed", Count: 2, Names: []string{"Alice", "Chloe"}},
				{Label: "Expert", Count: 1, Names: []string{"Bob"}},
				{Label: LabelMissing, Count: 1, Names: []string{"David"}},
			},
		},
		{
			name: "self assessment",
			view: signalling,
			kind: SelfAssessment,
			want: []groupSummary{
				{Label: "Generic knowledge", Count: 1, Names: []string{"Alice"}},
				{Label: "Confirmed", Count: 2, Names: []string{"Bob", "Chloe"}},
				{Label: "Not acquired", Count: 1, Names: []string{"David"}},
			},
		},
		{
			name: "unmapped level renders as N/A",
			view: ApplyFilters(sampleView(), Filters{Competency: "Catenary"}),
			kind: FinalAssessment,
			want: []groupSummary{
				{Label: "Generic knowledge", Count: 1, Names: []string{"Alice"}},
				{Label: LabelUnmapped, Count: 1, Names: []string{"Emma"}},
			},
		},
		{
			name: "linguistic scale",
			view: ApplyFilters(sampleView(), Filters{Competency: "English"}),
			kind: FinalAssessment,
			want: []groupSummary{
				{Label: "Mastery", Count: 1, Names: []string{"Alice"}},
				{Label: "Independent", Count: 1, Names: []string{"Bob"}},
			},
		},
		{
			name: "empty view",
			view: ApplyFilters(sampleView(), Filters{Competency: "Welding"}),
			kind: FinalAssessment,
			want: []groupSummary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(CountByLabel(tt.view, tt.kind))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("CountByLabel() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCountByLabel_DistinctCollaborators(t *testing.T) {
	duplicated := NewSliceView([]AssessmentRecord{
		rec("Alice", "Maintenance", railway, "Signalling", l3, l3, none),
		rec("Alice", "Maintenance", railway, "Signalling", l3, l3, none),
		rec("Bob", "Maintenance", railway, "Signalling", l3, l3, none),
	})

	groups := CountByLabel(duplicated, FinalAssessment)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, []string{"Alice", "Bob"}, groups[0].Names)
	assert.Equal(t, 3, groups[0].View.Len())
}

func TestCounts_SumToDistinctCollaborators(t *testing.T) {
	view := sampleView()
	for _, competency := range UniqueValues(view, DimCompetency) {
		selection := ApplyFilters(view, Filters{Competency: competency})
		distinct := DistinctCollaborators(selection)

		for _, kind := range []LevelKind{SelfAssessment, FinalAssessment} {
			total := 0
			for _, g := range CountByLabel(selection, kind) {
				total += g.Count
			}
			assert.Equal(t, distinct, total, "%s by %s", competency, kind)
		}

		total := 0
		for _, g := range CountByDepartment(selection) {
			total += g.Count
		}
		assert.Equal(t, distinct, total, "%s by department", competency)
	}
}

func TestCountByDepartment(t *testing.T) {
	selection := ApplyFilters(sampleView(), Filters{Competency: "Signalling"})

	want := []groupSummary{
		{Department: "Maintenance", Label: "Confirmed", Count: 1, Names: []string{"Alice"}},
		{Department: "Maintenance", Label: "Expert", Count: 1, Names: []string{"Bob"}},
		{Department: "Operations", Label: "Confirmed", Count: 1, Names: []string{"Chloe"}},
		{Department: "Operations", Label: LabelMissing, Count: 1, Names: []string{"David"}},
	}
	if diff := cmp.Diff(want, summarize(CountByDepartment(selection))); diff != "" {
		t.Errorf("CountByDepartment() mismatch (-want +got):\n%s", diff)
	}
}

func confirmedRecords(competency string, n int) []AssessmentRecord {
	out := make([]AssessmentRecord, 0, n)
	for i := 0; i < n; i++ {
		name := competency + "-" + string(rune('A'+i))
		out = append(out, rec(name, "Maintenance", railway, competency, l3, l3, none))
	}
	return out
}

func TestThresholdAlerts_ConfirmedBelowThreshold(t *testing.T) {
	records := append(confirmedRecords("X", 3), confirmedRecords("Y", 7)...)
	view := NewSliceView(records)

	alerts := ThresholdAlerts(view, WithAlertLabels(LabelConfirmed))

	require.Len(t, alerts, 1)
	assert.Equal(t, "X", alerts[0].Competency)
	assert.Equal(t, LabelConfirmed, alerts[0].Label)
	assert.Equal(t, 3, alerts[0].Count)
	assert.Equal(t, DefaultAlertThreshold, alerts[0].Threshold)
	assert.Equal(t, []string{"X-A", "X-B", "X-C"}, alerts[0].Names)
}

func TestThresholdAlerts_DefaultLabels(t *testing.T) {
	records := append(confirmedRecords("X", 3), confirmedRecords("Y", 7)...)
	alerts := ThresholdAlerts(NewSliceView(records))

	var confirmed, expert []string
	for _, a := range alerts {
		switch a.Label {
		case LabelConfirmed:
			confirmed = append(confirmed, a.Competency)
		case LabelExpert:
			expert = append(expert, a.Competency)
		}
	}
	assert.Equal(t, []string{"X"}, confirmed)
	assert.Equal(t, []string{"X", "Y"}, expert, "nobody is expert in either competency")
}

func TestThresholdAlerts_Configuration(t *testing.T) {
	view := sampleView()

	t.Run("defaults", func(t *testing.T) {
		alerts := ThresholdAlerts(view)
		got := make([][2]string, len(alerts))
		for i, a := range alerts {
			got[i] = [2]string{a.Competency, a.Label}
		}
		assert.Equal(t, [][2]string{
			{"Signalling", "Confirmed"},
			{"Signalling", "Expert"},
			{"Catenary", "Confirmed"},
			{"Catenary", "Expert"},
		}, got)
	})

	t.Run("threshold is strict", func(t *testing.T) {
		alerts := ThresholdAlerts(view, WithAlertThreshold(2))
		require.Len(t, alerts, 3)
		assert.Equal(t, "Signalling", alerts[0].Competency)
		assert.Equal(t, LabelExpert, alerts[0].Label)
	})

	t.Run("other domain", func(t *testing.T) {
		alerts := ThresholdAlerts(view, WithAlertDomain("Management"), WithAlertLabels("Not acquired"), WithAlertThreshold(1))
		assert.Empty(t, alerts, "Chloe is the one collaborator needed")
	})

	t.Run("domain absent", func(t *testing.T) {
		assert.Empty(t, ThresholdAlerts(view, WithAlertDomain("Nowhere")))
	})
}

func TestUnderqualified(t *testing.T) {
	records := []AssessmentRecord{
		rec("A", "Maintenance", railway, "Signalling", l2, l2, l3),
		rec("B", "Maintenance", railway, "Signalling", l4, l4, l3),
		rec("C", "Maintenance", railway, "Signalling", l1, l1, none),
	}

	got := Underqualified(NewSliceView(records))

	want := []Shortfall{{Collaborator: "A", Competencies: []string{"Signalling"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Underqualified() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnderqualified_SampleDataset(t *testing.T) {
	got := Underqualified(sampleView())

	want := []Shortfall{
		{Collaborator: "Alice", Competencies: []string{"Catenary"}},
		{Collaborator: "Bob", Competencies: []string{"English"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Underqualified() mismatch (-want +got):\n%s", diff)
	}
}

func TestUnderqualified_MissingFinalExcluded(t *testing.T) {
	records := []AssessmentRecord{
		rec("D", "Operations", railway, "Signalling", l1, none, l2),
		rec("D", "Operations", railway, "Catenary", l1, l0, l2),
		rec("D", "Operations", railway, "Catenary", l1, l0, l2),
	}

	got := Underqualified(NewSliceView(records))

	require.Len(t, got, 1)
	assert.Equal(t, []string{"Catenary"}, got[0].Competencies)
}

func TestCountByLabel_SumsToDistinctCollaborators(t *testing.T) {
	for _, competency := range UniqueValues(sampleView(), DimCompetency) {
		view := ApplyFilters(sampleView(), Filters{Competency: competency})
		for _, kind := range []LevelKind{SelfAssessment, FinalAssessment} {
			sum := 0
			for _, g := range CountByLabel(view, kind) {
				sum += g.Count
			}
			assert.Equal(t, DistinctCollaborators(view), sum, "%s %s", competency, kind)
		}
	}

	// Across competencies a collaborator can hold two labels and counts once in each.
	sum := 0
	for _, g := range CountByLabel(sampleView(), FinalAssessment) {
		sum += g.Count
	}
	assert.GreaterOrEqual(t, sum, DistinctCollaborators(sampleView()))
}

func TestCollaboratorsAt(t *testing.T) {
	cfg := applyOptions(nil)
	view := ApplyFilters(sampleView(), Filters{Domain: railway})
	assert.Len(t, collaboratorsAt(cfg, view, LabelConfirmed), 2)
	assert.Len(t, collaboratorsAt(cfg, view, LabelExpert), 1)
	assert.Empty(t, collaboratorsAt(cfg, view, "Mastery"))
}
