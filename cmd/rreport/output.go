package main

import (
	"encoding/json"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// writeOutput encodes v as JSON or YAML, or calls text with an aligned
// writer for the text format.
func writeOutput(w io.Writer, format string, v any, text func(*tabwriter.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		text(tw)
		return tw.Flush()
	}
}
