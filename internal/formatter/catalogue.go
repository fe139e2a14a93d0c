package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

// TextFormatter writes a catalogue as a compact text listing.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the catalogue in compact text format.
func (f *TextFormatter) Format(c *catalogue.Catalogue) error {
	for i := range c.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(&c.Tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table *catalogue.Table) error {
	pkStr := ""
	if len(table.PrimaryKeys) > 0 {
		pkStr = fmt.Sprintf(" (PK: %s)", strings.Join(table.PrimaryKeys, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s%s [%s, %d rows]\n",
		table.Name, pkStr, table.Classification, table.NumberOfRows)

	if table.Description != "" {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", catalogue.ShortDescription(table.Description))
	}

	for _, col := range table.Columns {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatColumn(col))
	}

	return nil
}

func (f *TextFormatter) formatColumn(col catalogue.Column) string {
	parts := []string{col.Name + ":", col.DataType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	// The display class covers sensitivity too, so selectability is visible
	// directly in the listing.
	if class := col.Class(); class != "n/a" {
		parts = append(parts, strings.ToUpper(class))
	}

	return strings.Join(parts, " ")
}
