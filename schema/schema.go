package schema

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ============================================================================
// SCHEMA: Describes the columns of an assessment spreadsheet
// ============================================================================
// The loader resolves spreadsheet headers against this schema before it
// builds a single record. Hosts may override the schema (extra aliases,
// renamed headers) with a JSON file.
// ============================================================================

// Column keys. They match the engine's dimension and level keys.
const (
	KeyCollaborator    = "collaborator"
	KeyDepartment      = "department"
	KeyDomain          = "competency_domain"
	KeySubdomain       = "competency_subdomain"
	KeyCompetency      = "competency"
	KeySelfAssessment  = "self_assessment"
	KeyFinalAssessment = "final_assessment"
	KeyRequiredLevel   = "required_level"
)

// ColumnKind says how a cell is parsed.
type ColumnKind string

const (
	KindText  ColumnKind = "text"
	KindLevel ColumnKind = "level"
)

// Config describes the complete shape of an assessment sheet.
type Config struct {
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	Columns []Column `json:"columns"`
}

// Column describes one expected spreadsheet column.
type Column struct {
	Key         string     `json:"key"`
	DisplayName string     `json:"displayName"`
	Kind        ColumnKind `json:"kind"`
	Required    bool       `json:"required"`
	Aliases     []string   `json:"aliases,omitempty"` // alternative headers, matched after normalization
}

// engineKeys are the columns the engine reads.
var engineKeys = []string{
	KeyCollaborator, KeyDepartment, KeyDomain, KeySubdomain, KeyCompetency,
	KeySelfAssessment, KeyFinalAssessment, KeyRequiredLevel,
}

// Default returns the built-in schema: English headers, with the French
// headers of the legacy workbook accepted as aliases.
func Default() Config {
	return Config{
		Name:    "Skill assessments",
		Version: "1.0",
		Columns: []Column{
			{Key: KeyCollaborator, DisplayName: "Collaborator", Kind: KindText, Required: true,
				Aliases: []string{"Collaborateur", "Employee", "Name"}},
			{Key: KeyDepartment, DisplayName: "Department", Kind: KindText, Required: true,
				Aliases: []string{"Département", "Service"}},
			{Key: KeyDomain, DisplayName: "Competency domain", Kind: KindText, Required: true,
				Aliases: []string{"Domaine de compétence", "Domain"}},
			{Key: KeySubdomain, DisplayName: "Competency subdomain", Kind: KindText, Required: true,
				Aliases: []string{"Sous-domaine de compétence", "Subdomain"}},
			{Key: KeyCompetency, DisplayName: "Competency", Kind: KindText, Required: true,
				Aliases: []string{"Compétence", "Skill"}},
			{Key: KeySelfAssessment, DisplayName: "Self-assessment", Kind: KindLevel, Required: true,
				Aliases: []string{"Auto-évaluation", "Self assessment level"}},
			{Key: KeyFinalAssessment, DisplayName: "Final assessment", Kind: KindLevel, Required: true,
				Aliases: []string{"Evaluation finale", "Évaluation finale", "Final assessment level"}},
			{Key: KeyRequiredLevel, DisplayName: "Required level", Kind: KindLevel, Required: false,
				Aliases: []string{"Niveau requis"}},
		},
	}
}

// Column returns the column with the given key.
func (c Config) Column(key string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// Keys returns all column keys.
func (c Config) Keys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// RequiredColumns returns the display names of required columns.
func (c Config) RequiredColumns() []string {
	var names []string
	for _, col := range c.Columns {
		if col.Required {
			names = append(names, col.DisplayName)
		}
	}
	return names
}

// Validate checks that the schema declares every column the engine reads,
// with the expected kind.
func (c Config) Validate() error {
	for _, key := range engineKeys {
		col, ok := c.Column(key)
		if !ok {
			return errors.Errorf("schema %q does not declare column %q", c.Name, key)
		}
		want := KindText
		if key == KeySelfAssessment || key == KeyFinalAssessment || key == KeyRequiredLevel {
			want = KindLevel
		}
		if col.Kind != want {
			return errors.Errorf("column %q must be of kind %q, got %q", key, want, col.Kind)
		}
		if col.DisplayName == "" {
			return errors.Errorf("column %q has no display name", key)
		}
	}
	return nil
}

// Load reads a JSON schema override from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read schema file")
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse schema JSON")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid schema")
	}
	return cfg, nil
}
