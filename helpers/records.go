package helpers

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/logger"
	"github.com/spektr-org/skillscope/schema"
)

// ============================================================================
// RECORD LOADER: Parses spreadsheet rows into []engine.AssessmentRecord
// ============================================================================
// Consumer reads the file from wherever it lives (disk, upload, S3).
// This helper converts the raw bytes into records using the schema.
//
// Order of checks: unreadable file → LoadError; missing columns →
// schema.SchemaError; bad level cell → LoadError. No record is returned
// when any of these fail.
// ============================================================================

// LoadError reports an input file that could not be read as assessments.
// Row and Column are set for cell-level failures (Row is 1-based, header
// row = 1, the way spreadsheet tools number rows).
type LoadError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("failed to load")
	if e.Source != "" {
		fmt.Fprintf(&b, " %s", e.Source)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " (row %d", e.Row)
		if e.Column != "" {
			fmt.Fprintf(&b, ", column %q", e.Column)
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Err }

// Cause supports errors.Cause from github.com/pkg/errors.
func (e *LoadError) Cause() error { return e.Err }

// LoadFile reads and parses an assessment spreadsheet from disk.
func LoadFile(ctx context.Context, path string, sch schema.Config) ([]engine.AssessmentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: filepath.Base(path), Err: errors.Wrap(err, "failed to read file")}
	}
	return Load(ctx, data, filepath.Base(path), sch)
}

// LoadReader reads and parses an assessment spreadsheet from r. The
// filename selects the format.
func LoadReader(ctx context.Context, r io.Reader, filename string, sch schema.Config) ([]engine.AssessmentRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: filename, Err: errors.Wrap(err, "failed to read upload")}
	}
	return Load(ctx, data, filename, sch)
}

// Load parses spreadsheet bytes into records.
func Load(ctx context.Context, data []byte, filename string, sch schema.Config) ([]engine.AssessmentRecord, error) {
	rows, err := ReadRows(data, DetectFormat(filename))
	if err != nil {
		return nil, &LoadError{Source: filename, Err: err}
	}

	records, skipped, err := ParseRecords(rows, sch)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Source = filename
		}
		return nil, err
	}

	log := logger.G(ctx).WithField("source", filename)
	for _, s := range skipped {
		log.WithField("column", s.Column).Debug(s.Reason)
	}
	log.WithField("records", len(records)).Info("loaded assessments")
	return records, nil
}

// ParseRecords converts a cell grid (header row first) into records.
// Blank rows are skipped. Returns the headers that matched no column.
func ParseRecords(rows [][]string, sch schema.Config) ([]engine.AssessmentRecord, []schema.SkippedColumn, error) {
	if len(rows) == 0 {
		return nil, nil, &LoadError{Err: errors.New("no header row")}
	}

	mapping, err := sch.Resolve(rows[0])
	if err != nil {
		return nil, mapping.Skipped, err
	}

	records := make([]engine.AssessmentRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2

		rec := engine.AssessmentRecord{
			Collaborator: mapping.Cell(row, schema.KeyCollaborator),
			Department:   mapping.Cell(row, schema.KeyDepartment),
			Domain:       mapping.Cell(row, schema.KeyDomain),
			Subdomain:    mapping.Cell(row, schema.KeySubdomain),
			Competency:   mapping.Cell(row, schema.KeyCompetency),
		}

		levels := []struct {
			key string
			dst *engine.Level
		}{
			{schema.KeySelfAssessment, &rec.SelfAssessment},
			{schema.KeyFinalAssessment, &rec.FinalAssessment},
			{schema.KeyRequiredLevel, &rec.RequiredLevel},
		}
		for _, l := range levels {
			level, err := ParseLevel(mapping.Cell(row, l.key))
			if err != nil {
				col, _ := sch.Column(l.key)
				return nil, mapping.Skipped, &LoadError{Row: rowNum, Column: col.DisplayName, Err: err}
			}
			*l.dst = level
		}

		records = append(records, rec)
	}

	return records, mapping.Skipped, nil
}

// ParseLevel parses a level cell. Blank cells are missing levels.
// Whole-number floats ("3.0", as spreadsheets often store them) are
// accepted; fractions and text are not.
func ParseLevel(cell string) (engine.Level, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return engine.Level{}, nil
	}
	if n, err := strconv.Atoi(cell); err == nil {
		return engine.LevelOf(n), nil
	}
	f, err := strconv.ParseFloat(strings.Replace(cell, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return engine.Level{}, errors.Errorf("level %q is not an integer", cell)
	}
	if f != math.Trunc(f) {
		return engine.Level{}, errors.Errorf("level %q is not a whole number", cell)
	}
	return engine.LevelOf(int(f)), nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
