package engine

import (
	"strings"
)

// ============================================================================
// AGGREGATORS: Label grouping, threshold alerts, underqualification
// ============================================================================
// All functions operate on RecordView, zero-copy access to the dataset.
// Grouping produces SubViews (index lists into parent view).
//
// Ordering contract: groups appear in the order their key is first seen in
// the view. No alphabetical or level ordering is applied.
// ============================================================================

// CountByLabel groups a view by the resolved label of one assessment column
// and counts distinct collaborators per label.
func CountByLabel(view RecordView, kind LevelKind, opts ...Option) []Group {
	cfg := applyOptions(opts)
	return countByLabel(cfg, view, kind)
}

func countByLabel(cfg *config, view RecordView, kind LevelKind) []Group {
	groups := groupBy(view, func(i int) groupKey {
		return groupKey{label: resolveLabel(cfg, view.Dimension(i, DimDomain), view.Level(i, kind))}
	})
	for i := range groups {
		summarizeGroup(&groups[i])
	}
	return groups
}

// CountByDepartment groups a view by (department, resolved final label)
// and counts distinct collaborators per pair.
func CountByDepartment(view RecordView, opts ...Option) []Group {
	cfg := applyOptions(opts)
	return countByDepartment(cfg, view)
}

func countByDepartment(cfg *config, view RecordView) []Group {
	groups := groupBy(view, func(i int) groupKey {
		return groupKey{
			department: view.Dimension(i, DimDepartment),
			label:      resolveLabel(cfg, view.Dimension(i, DimDomain), view.Level(i, FinalAssessment)),
		}
	})
	for i := range groups {
		summarizeGroup(&groups[i])
	}
	return groups
}

// ThresholdAlerts reports, for every competency of the alert domain, each
// alert label held by fewer distinct collaborators than the threshold.
// Competencies with nobody at a label are reported with a zero count.
func ThresholdAlerts(view RecordView, opts ...Option) []Alert {
	cfg := applyOptions(opts)
	return thresholdAlerts(cfg, view)
}

func thresholdAlerts(cfg *config, view RecordView) []Alert {
	scoped := ApplyFilters(view, Filters{Domain: cfg.AlertDomain})
	if scoped.Len() == 0 {
		return nil
	}

	byCompetency := groupBy(scoped, func(i int) groupKey {
		return groupKey{label: scoped.Dimension(i, DimCompetency)}
	})

	var alerts []Alert
	for _, g := range byCompetency {
		for _, label := range cfg.AlertLabels {
			names := collaboratorsAt(cfg, g.View, label)
			if len(names) < cfg.AlertThreshold {
				alerts = append(alerts, Alert{
					Competency: g.Label,
					Label:      label,
					Count:      len(names),
					Names:      names,
					Threshold:  cfg.AlertThreshold,
				})
			}
		}
	}
	return alerts
}

// collaboratorsAt lists the distinct collaborators whose final assessment
// resolves to label.
func collaboratorsAt(cfg *config, view RecordView, label string) []string {
	seen := make(map[string]bool)
	names := []string{}
	for i := 0; i < view.Len(); i++ {
		if resolveLabel(cfg, view.Dimension(i, DimDomain), view.Level(i, FinalAssessment)) != label {
			continue
		}
		name := view.Dimension(i, DimCollaborator)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Underqualified lists, per collaborator, the competencies where the final
// level is below the required level. Rows missing either level are not
// compared.
func Underqualified(view RecordView) []Shortfall {
	index := make(map[string]int)
	var out []Shortfall

	for i := 0; i < view.Len(); i++ {
		final := view.Level(i, FinalAssessment)
		required := view.Level(i, RequiredLevel)
		if final.Missing() || required.Missing() || final.Value >= required.Value {
			continue
		}

		name := view.Dimension(i, DimCollaborator)
		competency := view.Dimension(i, DimCompetency)
		pos, ok := index[name]
		if !ok {
			pos = len(out)
			index[name] = pos
			out = append(out, Shortfall{Collaborator: name})
		}
		if !containsString(out[pos].Competencies, competency) {
			out[pos].Competencies = append(out[pos].Competencies, competency)
		}
	}
	return out
}

// ============================================================================
// GROUPING
// ============================================================================

type groupKey struct {
	department string
	label      string
}

func groupBy(view RecordView, keyOf func(i int) groupKey) []Group {
	grouped := make(map[groupKey][]int)
	order := make([]groupKey, 0)

	for i := 0; i < view.Len(); i++ {
		key := keyOf(i)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Department: key.department,
			Label:      key.label,
			View:       newSubView(view, grouped[key]),
		})
	}
	return groups
}

// summarizeGroup fills Count and Names with the group's distinct
// collaborators in first-appearance order.
func summarizeGroup(g *Group) {
	g.Names = UniqueValues(g.View, DimCollaborator)
	g.Count = len(g.Names)
}

// DistinctCollaborators counts distinct non-empty collaborator names.
func DistinctCollaborators(view RecordView) int {
	return len(UniqueValues(view, DimCollaborator))
}

// JoinNames renders a name list the way exports show it.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
