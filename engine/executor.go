package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/spektr-org/skillscope/logger"
)

// ============================================================================
// EXECUTOR: View dispatcher
// ============================================================================
// Entry point: Execute(ctx, spec, view, opts...)
//
// Pipeline:
//   1. Scope filters for the view (alerts ignore domain/competency)
//   2. Apply filters → SubView
//   3. Aggregate (labels, departments, alerts, shortfalls, comparison)
//   4. Build chart + table (+ totals)
//   5. Return Result
//
// An empty selection is not an error: the result is flagged Empty and
// carries a headers-only table.
// ============================================================================

// ErrUnknownView is returned for a ViewKind the engine does not know.
var ErrUnknownView = errors.New("unknown view")

// Execute computes one report view over a dataset.
func Execute(ctx context.Context, spec ViewSpec, view RecordView, opts ...Option) (*Result, error) {
	if _, ok := ParseViewKind(string(spec.View)); !ok {
		return nil, errors.Wrapf(ErrUnknownView, "view %q", spec.View)
	}
	cfg := applyOptions(opts)
	log := logger.G(ctx).WithField("view", spec.View)

	filters := scopeFilters(spec.View, spec.Filters)
	filtered := ApplyFilters(view, filters)

	log.WithFields(map[string]any{
		"records":  view.Len(),
		"selected": filtered.Len(),
	}).Debug("applied filters")

	title := BuildTitle(spec)
	result := &Result{
		View:    spec.View,
		Title:   title,
		Records: filtered.Len(),
		Context: selectionContext(filtered),
	}

	switch spec.View {
	case ViewSelf, ViewFinal:
		kind := SelfAssessment
		if spec.View == ViewFinal {
			kind = FinalAssessment
		}
		groups := countByLabel(cfg, filtered, kind)
		result.ChartConfig = BuildLabelChart(title, groups)
		result.TableData = BuildLabelTable(title, groups)

	case ViewDepartment:
		groups := countByDepartment(cfg, filtered)
		result.ChartConfig = BuildDepartmentChart(title, groups)
		result.TableData = BuildDepartmentTable(title, groups)
		result.Totals = buildTotals(cfg, filtered)

	case ViewComparison:
		result.ChartConfig = BuildComparisonChart(title, filtered)
		result.TableData = BuildComparisonTable(title, filtered, opts...)

	case ViewAlerts:
		alerts := thresholdAlerts(cfg, filtered)
		result.TableData = BuildAlertTable(title, alerts)

	case ViewUnderqualified:
		shortfalls := Underqualified(filtered)
		result.TableData = BuildUnderqualifiedTable(title, shortfalls)
	}

	if filtered.Len() == 0 {
		result.Empty = true
		result.Reply = emptySelectionReply
		log.Info("empty selection")
		return result, nil
	}

	result.Reply = buildReply(spec, filtered, len(result.TableData.Rows), cfg)
	log.WithField("rows", len(result.TableData.Rows)).Debug("view computed")
	return result, nil
}

// scopeFilters drops the filters a view does not honor. The alert view
// always looks at the configured alert domain, so a domain or competency
// selection does not apply to it.
func scopeFilters(kind ViewKind, f Filters) Filters {
	if kind == ViewAlerts {
		f.Domain = ""
		f.Competency = ""
	}
	return f
}
