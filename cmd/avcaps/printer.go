package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// report is a command result that can render itself as a text table.
type report interface {
	writeText(w *tabwriter.Writer)
}

type printer struct {
	w      io.Writer
	format string
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, format: format}
}

func (p *printer) print(r report) error {
	switch p.format {
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatText:
		tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
		r.writeText(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", p.format)
	}
}
