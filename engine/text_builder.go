package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER: Titles, replies and headline totals
// ============================================================================

var viewTitles = map[ViewKind]string{
	ViewSelf:           "Self-assessment",
	ViewFinal:          "Final assessment",
	ViewComparison:     "Self-assessment vs. final assessment",
	ViewDepartment:     "Confirmed and experts by department",
	ViewAlerts:         "Understaffed competencies",
	ViewUnderqualified: "Collaborators below the required level",
}

// BuildTitle derives a title from the view and its selection.
func BuildTitle(spec ViewSpec) string {
	if spec.Title != "" {
		return spec.Title
	}
	title := viewTitles[spec.View]
	if title == "" {
		title = string(spec.View)
	}

	var parts []string
	if spec.Filters.Collaborator != "" && spec.View != ViewAlerts {
		parts = append(parts, spec.Filters.Collaborator)
	}
	if spec.Filters.Competency != "" && spec.View != ViewAlerts {
		parts = append(parts, fmt.Sprintf("%q", spec.Filters.Competency))
	}
	if spec.Filters.Department != "" {
		parts = append(parts, spec.Filters.Department)
	}
	if len(parts) == 0 {
		return title
	}
	return fmt.Sprintf("%s: %s", title, strings.Join(parts, ", "))
}

// buildTotals counts distinct collaborators at each alert label across the
// whole selection.
func buildTotals(cfg *config, view RecordView) []Total {
	totals := make([]Total, 0, len(cfg.AlertLabels))
	for _, label := range cfg.AlertLabels {
		totals = append(totals, Total{
			Label: label,
			Value: len(collaboratorsAt(cfg, view, label)),
		})
	}
	return totals
}

func buildReply(spec ViewSpec, view RecordView, rows int, cfg *config) string {
	switch spec.View {
	case ViewSelf, ViewFinal:
		return fmt.Sprintf("%d collaborators across %d labels.", DistinctCollaborators(view), rows)
	case ViewComparison:
		return fmt.Sprintf("%d competencies compared.", rows)
	case ViewDepartment:
		return fmt.Sprintf("%d department/label pairs.", rows)
	case ViewAlerts:
		if rows == 0 {
			return fmt.Sprintf("Every competency of %q has at least %d collaborators per level.",
				cfg.AlertDomain, cfg.AlertThreshold)
		}
		return fmt.Sprintf("%d alerts in %q (fewer than %d collaborators).",
			rows, cfg.AlertDomain, cfg.AlertThreshold)
	case ViewUnderqualified:
		if rows == 0 {
			return "Every collaborator meets the required levels."
		}
		return fmt.Sprintf("%d collaborators below the required level.", rows)
	default:
		return ""
	}
}

const emptySelectionReply = "No records match the selected filters."
