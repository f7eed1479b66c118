package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/helpers"
	"github.com/spektr-org/skillscope/presenter"
)

// ============================================================================
// OUTPUT: json, pretty, yaml, csv and table renderings of a view
// ============================================================================

// Output formats.
const (
	formatJSON   = "json"
	formatPretty = "pretty"
	formatYAML   = "yaml"
	formatCSV    = "csv"
	formatTable  = "table"
)

var resultFormats = []string{formatJSON, formatPretty, formatYAML, formatCSV, formatTable}

func validFormat(format string, allowed []string) error {
	for _, f := range allowed {
		if f == format {
			return nil
		}
	}
	return errors.Errorf("unknown format %q (want one of %v)", format, allowed)
}

// openOutput returns stdout, or a created file when path is set.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create output file")
	}
	return f, f.Close, nil
}

// writeResult renders a view result in the requested format.
func writeResult(w io.Writer, result *engine.Result, format string) error {
	switch format {
	case formatCSV:
		return helpers.WriteTableCSV(w, result.TableData)
	case formatTable:
		p := presenter.NewWithOptions(w, w, presenter.ColorNever)
		p.Report(result)
		return nil
	default:
		return writeData(w, result, format)
	}
}

// writeData renders any JSON-tagged value as json, pretty or yaml.
func writeData(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	switch format {
	case formatPretty:
		out, err = json.MarshalIndent(v, "", "  ")
	case formatYAML:
		out, err = toYAML(v)
	default:
		out, err = json.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal output")
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}

// toYAML converts through JSON so YAML keys match the JSON field names.
// Key order is kept by decoding into a yaml.Node.
func toYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, err
	}
	return out[:len(out)-1], nil
}

// blockStyle drops the flow and quoting styles a JSON document parses with.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
