// Package formatting renders listings and apply results in the output
// formats the CLI supports: rounded tables for humans, JSON and YAML for
// machines.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"

	pkgstrings "ccloudctl/pkg/strings"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output, long cells truncated
	FormatWide  OutputFormat = "wide"  // Table output without truncation
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatTable, FormatWide, FormatJSON, FormatYAML:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (valid: table, wide, json, yaml)", s)
	}
}

// Printer writes formatted output to one destination.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter creates a printer for the given format.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	return &Printer{out: out, format: format}
}

// Structured reports whether the format is machine-readable. Structured
// output gets the full objects; table output gets rows.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

// Table renders a rounded table with highlighted headers. In the table
// format long cells are truncated to keep rows readable; wide shows them
// in full.
func (p *Printer) Table(columns []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	for _, column := range columns {
		header = append(header, text.FgHiCyan.Sprint(column))
	}
	t.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, 0, len(row))
		for _, cell := range row {
			if p.format == FormatTable {
				cell = pkgstrings.TruncateDescription(cell, pkgstrings.DefaultDescriptionMaxLen)
			}
			cells = append(cells, cell)
		}
		t.AppendRow(cells)
	}

	t.Render()
}

// Encode writes v in the structured format. The YAML path goes through
// JSON first so the json struct tags decide the field names.
func (p *Printer) Encode(v any) error {
	switch p.format {
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = p.out.Write(b)
		return err
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(p.out, string(b))
		return err
	}
}

// Empty prints the placeholder message for listings with no rows.
func (p *Printer) Empty(message string) {
	fmt.Fprintln(p.out, text.FgYellow.Sprint(message))
}
