// Package output provides output formatting for authgate-cli.
package output

import (
	"encoding/json"
	"io"
	"strings"
	"text/tabwriter"
)

// Table is tabular data built row by row by the commands.
type Table struct {
	Headers []string
	Rows    [][]string
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if len(t.Headers) > 0 {
		if _, err := io.WriteString(tw, strings.Join(t.Headers, "\t")+"\n"); err != nil {
			return err
		}
	}
	for _, row := range t.Rows {
		if _, err := io.WriteString(tw, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// TableFormatter renders a Table; anything else is encoded as
// indented JSON.
type TableFormatter struct{}

// Format renders data as a table when it is one.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch t := data.(type) {
	case *Table:
		return t.Render(w)
	case Table:
		return t.Render(w)
	case nil:
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
}
