package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
	"github.com/civic-health-innovation-labs/AppDAR/internal/request"
)

// ReviewScriptFormatter writes the requested tables and columns as a pyspark
// snippet a data manager can paste into a workbook to inspect the real data
// before deciding on the request. The output is advisory and never parsed
// back, but the emitted identifiers and their order map one-to-one onto the
// request entries.
type ReviewScriptFormatter struct {
	writer io.Writer
}

// NewReviewScriptFormatter creates a new review script formatter.
func NewReviewScriptFormatter(w io.Writer) *ReviewScriptFormatter {
	return &ReviewScriptFormatter{writer: w}
}

// Format writes one load/select/where statement per table entry, separated
// by blank lines.
func (f *ReviewScriptFormatter) Format(entries []request.TableEntry) error {
	for i, entry := range entries {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}

		if err := f.formatTable(entry); err != nil {
			return err
		}
	}
	return nil
}

func (f *ReviewScriptFormatter) formatTable(entry request.TableEntry) error {
	shortName := catalogue.ShortTableName(entry.Name)

	columns := make([]string, 0, len(entry.Columns))
	for _, col := range entry.Columns {
		columns = append(columns, fmt.Sprintf("%q", col.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, `df_%s = spark.read.format("delta")`, shortName)
	fmt.Fprintf(&b, `.load(f"wasbs://{SOURCE_BLOB_NAME}@{SOURCE_STORAGE_ACCOUNT_NAME}.blob.core.windows.net/%s")`, shortName)
	fmt.Fprintf(&b, ".select([%s])", strings.Join(columns, ", "))
	if entry.WhereStatement != nil {
		fmt.Fprintf(&b, ".where(%q)", *entry.WhereStatement)
	}

	_, _ = fmt.Fprintln(f.writer, b.String())
	_, _ = fmt.Fprintf(f.writer, "display(df_%s)\n", shortName)
	return nil
}
