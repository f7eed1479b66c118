package engine

// ============================================================================
// LABELS: Level scales and the label resolver
// ============================================================================
// Two fixed scales map integer levels to labels. A record uses the
// linguistic scale iff its domain is the linguistic domain, else the
// generic scale.
// ============================================================================

// Sentinel labels.
const (
	LabelMissing  = "Missing assessment"
	LabelUnmapped = "N/A"
)

// Generic scale labels used as staffing thresholds.
const (
	LabelConfirmed = "Confirmed"
	LabelExpert    = "Expert"
)

// DefaultLinguisticDomain is the domain rated on the linguistic scale.
const DefaultLinguisticDomain = "Linguistic competencies"

// ScaleEntry is one level of a scale.
type ScaleEntry struct {
	Level int    `json:"level" yaml:"level"`
	Label string `json:"label" yaml:"label"`
}

// LevelScale is an ordered level → label table.
type LevelScale struct {
	Name    string       `json:"name" yaml:"name"`
	Entries []ScaleEntry `json:"entries" yaml:"entries"`
}

// LinguisticScale rates language competencies.
var LinguisticScale = LevelScale{
	Name: "linguistic",
	Entries: []ScaleEntry{
		{0, "Discovery"},
		{1, "Intermediate"},
		{2, "Independent"},
		{3, "Advanced"},
		{4, "Autonomous"},
		{5, "Mastery"},
	},
}

// GenericScale rates every other competency.
var GenericScale = LevelScale{
	Name: "generic",
	Entries: []ScaleEntry{
		{0, "Not applicable"},
		{1, "Not acquired"},
		{2, "Generic knowledge"},
		{3, LabelConfirmed},
		{4, LabelExpert},
	},
}

// Label looks up a level in the scale.
func (s LevelScale) Label(level int) (string, bool) {
	for _, e := range s.Entries {
		if e.Level == level {
			return e.Label, true
		}
	}
	return "", false
}

// Labels returns the scale's labels in level order.
func (s LevelScale) Labels() []string {
	labels := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		labels[i] = e.Label
	}
	return labels
}

// ScaleFor selects the scale for a competency domain.
func ScaleFor(domain, linguisticDomain string) LevelScale {
	if domain == linguisticDomain {
		return LinguisticScale
	}
	return GenericScale
}

// ResolveLabel renders a level as its label under the domain's scale.
// A missing level resolves to LabelMissing, an unknown one to LabelUnmapped.
func ResolveLabel(domain string, level Level, opts ...Option) string {
	return resolveLabel(applyOptions(opts), domain, level)
}

func resolveLabel(cfg *config, domain string, level Level) string {
	if level.Missing() {
		return LabelMissing
	}
	if label, ok := ScaleFor(domain, cfg.LinguisticDomain).Label(level.Value); ok {
		return label
	}
	return LabelUnmapped
}
