package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

// MarkdownFormatter writes a catalogue as a markdown document.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the catalogue in markdown format.
func (f *MarkdownFormatter) Format(c *catalogue.Catalogue) error {
	_, _ = fmt.Fprintln(f.writer, "# Data Catalogue")
	_, _ = fmt.Fprintln(f.writer)

	for i := range c.Tables {
		if err := f.formatTable(&c.Tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table *catalogue.Table) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)

	if table.Description != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", table.Description)
	}

	_, _ = fmt.Fprintf(f.writer, "- **Table type:** %s\n", table.Classification.Label())
	_, _ = fmt.Fprintf(f.writer, "- **Number of rows:** %d\n", table.NumberOfRows)
	if len(table.PrimaryKeys) > 0 {
		_, _ = fmt.Fprintf(f.writer, "- **Primary key column(s):** %s\n", strings.Join(table.PrimaryKeys, ", "))
	} else {
		_, _ = fmt.Fprintln(f.writer, "- **Primary key column(s):** n/a")
	}
	_, _ = fmt.Fprintln(f.writer)

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		constraintStr := f.formatConstraints(col)
		if constraintStr != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", col.Name, col.DataType, constraintStr)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", col.Name, col.DataType)
		}
		if col.Description != "" {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", catalogue.ShortDescription(col.Description))
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	return nil
}

func (f *MarkdownFormatter) formatConstraints(col catalogue.Column) string {
	var constraints []string

	if !col.Nullable {
		constraints = append(constraints, "not null")
	}
	if class := col.Class(); class != "n/a" {
		constraints = append(constraints, class)
	}

	return strings.Join(constraints, ", ")
}
