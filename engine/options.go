package engine

// ============================================================================
// ENGINE OPTIONS: Functional options for Execute() and the aggregators
// ============================================================================

// Defaults for the staffing alert.
const (
	DefaultAlertDomain    = "Railway technical competencies"
	DefaultAlertThreshold = 5
)

// DefaultAlertLabels are the generic-scale labels checked for understaffing.
var DefaultAlertLabels = []string{LabelConfirmed, LabelExpert}

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	LinguisticDomain string   // domain rated on the linguistic scale
	AlertDomain      string   // domain checked by ThresholdAlerts
	AlertThreshold   int      // alert when count < threshold
	AlertLabels      []string // labels counted by ThresholdAlerts
}

// WithLinguisticDomain sets the domain rated on the linguistic scale.
func WithLinguisticDomain(domain string) Option {
	return func(c *config) {
		if domain != "" {
			c.LinguisticDomain = domain
		}
	}
}

// WithAlertDomain sets the competency domain checked for understaffing.
func WithAlertDomain(domain string) Option {
	return func(c *config) {
		if domain != "" {
			c.AlertDomain = domain
		}
	}
}

// WithAlertThreshold sets the minimum number of collaborators per label.
// Non-positive values are ignored.
func WithAlertThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.AlertThreshold = n
		}
	}
}

// WithAlertLabels sets which final-assessment labels are counted.
func WithAlertLabels(labels ...string) Option {
	return func(c *config) {
		if len(labels) > 0 {
			c.AlertLabels = append([]string(nil), labels...)
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		LinguisticDomain: DefaultLinguisticDomain,
		AlertDomain:      DefaultAlertDomain,
		AlertThreshold:   DefaultAlertThreshold,
		AlertLabels:      DefaultAlertLabels,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
