package schema

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// HEADER RESOLUTION: Maps spreadsheet headers onto schema columns
// ============================================================================
// Headers and aliases are compared after normalization: accents stripped,
// lower-cased, every run of non-alphanumerics collapsed to "_".
// "Auto-évaluation " → "auto_evaluation".
//
// Headers that match no column are reported as skipped, never fatal.
// Missing required columns are all reported at once in a SchemaError.
// ============================================================================

// Mapping is the result of resolving a header row.
type Mapping struct {
	Index   map[string]int  `json:"index"` // column key → header position
	Skipped []SkippedColumn `json:"skippedColumns,omitempty"`
}

// Has reports whether a column was found.
func (m Mapping) Has(key string) bool {
	_, ok := m.Index[key]
	return ok
}

// Cell returns the trimmed cell for key in row, or "" when the column is
// absent or the row is short.
func (m Mapping) Cell(row []string, key string) string {
	idx, ok := m.Index[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// SkippedColumn records a header that matched no schema column.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// SchemaError lists required columns absent from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// Resolve maps a header row onto the schema.
func (c Config) Resolve(headers []string) (Mapping, error) {
	lookup := make(map[string]string)
	for _, col := range c.Columns {
		lookup[NormalizeHeader(col.DisplayName)] = col.Key
		lookup[NormalizeHeader(col.Key)] = col.Key
		for _, alias := range col.Aliases {
			lookup[NormalizeHeader(alias)] = col.Key
		}
	}

	mapping := Mapping{Index: make(map[string]int)}
	for i, h := range headers {
		normalized := NormalizeHeader(h)
		if normalized == "" {
			continue
		}
		key, ok := lookup[normalized]
		if !ok {
			mapping.Skipped = append(mapping.Skipped, SkippedColumn{Column: h, Reason: "not part of the schema"})
			continue
		}
		if _, dup := mapping.Index[key]; dup {
			mapping.Skipped = append(mapping.Skipped, SkippedColumn{Column: h, Reason: "duplicate of an earlier column"})
			continue
		}
		mapping.Index[key] = i
	}

	var missing []string
	for _, col := range c.Columns {
		if col.Required && !mapping.Has(col.Key) {
			missing = append(missing, col.DisplayName)
		}
	}
	if len(missing) > 0 {
		return mapping, &SchemaError{Missing: missing}
	}
	return mapping, nil
}

// NormalizeHeader converts "Domaine de compétence" → "domaine_de_competence".
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
