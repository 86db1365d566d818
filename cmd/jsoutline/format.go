package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"jsoutline/internal/extractor"
)

// writeUnits renders units as text, json or yaml. nested indents text output
// by the parent chain of each unit.
func writeUnits(w io.Writer, format string, units []*extractor.OutlineUnit, nested bool) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(units)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(units)
	case "text", "":
		return writeText(w, units, nested)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func writeText(w io.Writer, units []*extractor.OutlineUnit, nested bool) error {
	depth := make(map[string]int, len(units))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, u := range units {
		d := 0
		if p, ok := depth[u.Parent]; ok && u.Parent != "" {
			d = p + 1
		}
		depth[u.ID] = d

		label := u.Label
		if u.Details != "" {
			label += u.Details
		}
		if nested {
			fmt.Fprintf(tw, "%s%s\t%d-%d\t[%d,%d)\n", strings.Repeat("  ", d), label,
				u.StartLine, u.EndLine, u.Selection.Start, u.Selection.End)
		} else {
			fmt.Fprintf(tw, "%s:%d\t%s\n", u.Filepath, u.StartLine, label)
		}
	}
	return tw.Flush()
}
