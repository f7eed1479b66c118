package engine

import "math"

// ============================================================================
// CHART BUILDER: Produces ChartConfig from aggregated groups
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildLabelChart produces a pie chart of collaborator counts per label.
// Each point carries its share of the total.
func BuildLabelChart(title string, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	var total int
	for _, g := range groups {
		total += g.Count
	}

	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		p := ChartPoint{Label: g.Label, Value: float64(g.Count)}
		if total > 0 {
			p.Share = roundTo4(float64(g.Count) / float64(total))
		}
		points = append(points, p)
	}

	return &ChartConfig{
		ChartType:  "pie",
		Title:      title,
		XAxis:      "Label",
		YAxis:      "Collaborators",
		Series:     []ChartSeries{{Name: "Collaborators", Data: points}},
		Colors:     assignColors(len(points)),
		ShowLegend: true,
	}
}

// BuildDepartmentChart produces a stacked bar chart: one series per label,
// one bar per department.
func BuildDepartmentChart(title string, groups []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	var departments, labels []string
	counts := make(map[groupKey]int)
	for _, g := range groups {
		if !containsString(departments, g.Department) {
			departments = append(departments, g.Department)
		}
		if !containsString(labels, g.Label) {
			labels = append(labels, g.Label)
		}
		counts[groupKey{department: g.Department, label: g.Label}] = g.Count
	}

	series := make([]ChartSeries, 0, len(labels))
	for i, label := range labels {
		points := make([]ChartPoint, 0, len(departments))
		for _, dept := range departments {
			points = append(points, ChartPoint{
				Label: dept,
				Value: float64(counts[groupKey{department: dept, label: label}]),
			})
		}
		series = append(series, ChartSeries{
			Name:  label,
			Data:  points,
			Color: defaultColors[i%len(defaultColors)],
		})
	}

	return &ChartConfig{
		ChartType:  "stacked_bar",
		Title:      title,
		XAxis:      "Department",
		YAxis:      "Collaborators",
		Series:     series,
		Colors:     assignColors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

// BuildComparisonChart produces a grouped bar chart of self vs. final
// levels per competency. Missing levels are plotted as flagged zeros.
func BuildComparisonChart(title string, view RecordView) *ChartConfig {
	if view.Len() == 0 {
		return nil
	}

	self := make([]ChartPoint, 0, view.Len())
	final := make([]ChartPoint, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		competency := view.Dimension(i, DimCompetency)
		self = append(self, levelPoint(competency, view.Level(i, SelfAssessment)))
		final = append(final, levelPoint(competency, view.Level(i, FinalAssessment)))
	}

	return &ChartConfig{
		ChartType: "bar",
		Title:     title,
		XAxis:     "Competency",
		YAxis:     "Level",
		Series: []ChartSeries{
			{Name: "Self-assessment", Data: self, Color: defaultColors[0]},
			{Name: "Final assessment", Data: final, Color: defaultColors[1]},
		},
		Colors:     assignColors(2),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func levelPoint(label string, level Level) ChartPoint {
	if level.Missing() {
		return ChartPoint{Label: label, Missing: true}
	}
	return ChartPoint{Label: label, Value: float64(level.Value)}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
