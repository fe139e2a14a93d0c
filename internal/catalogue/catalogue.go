// Package catalogue holds the read-only data catalogue: tables, their
// columns, and the classification metadata that drives selectability.
// A catalogue is an immutable snapshot for one request session.
package catalogue

import (
	"encoding/json"
	"sort"
	"strings"
)

// Classification describes what kind of table a catalogue entry is.
type Classification string

// Table classifications as served by the backend.
const (
	ClassificationDataTable            Classification = "data-table"
	ClassificationCodeList             Classification = "code-list"
	ClassificationIdentifiableCodeList Classification = "identifiable-code-list"
	ClassificationNotImported          Classification = "not-imported"
)

// Label returns the human-readable form of the classification.
func (c Classification) Label() string {
	switch c {
	case ClassificationDataTable:
		return "Data table"
	case ClassificationCodeList:
		return "Code list"
	case ClassificationIdentifiableCodeList:
		return "Code list with identifiables"
	case ClassificationNotImported:
		return "Not imported"
	default:
		return "n/a"
	}
}

// Column describes one column of a catalogue table. Identifiable columns
// carry sensitive data and can never be selected into a request.
type Column struct {
	Name         string `json:"-"`
	Description  string `json:"description"`
	Nullable     bool   `json:"is_nullable"`
	DataType     string `json:"data_type"`
	Identifiable bool   `json:"is_identifiable"`
	FreeText     bool   `json:"is_free_text"`
	ClientID     bool   `json:"is_client_id"`
	DateTime     bool   `json:"is_date_time"`
	Date         bool   `json:"is_date"`
}

// Class returns the display class of the column. At most one flag drives
// display; the precedence mirrors the catalogue front end.
func (c Column) Class() string {
	switch {
	case c.FreeText:
		return "free-text"
	case c.Identifiable:
		return "sensitive"
	case c.ClientID:
		return "client-id"
	case c.DateTime:
		return "date-time"
	case c.Date:
		return "date"
	default:
		return "n/a"
	}
}

// Table describes one catalogue table together with its columns.
type Table struct {
	Name           string
	Description    string
	NumberOfRows   int64
	PrimaryKeys    []string
	Classification Classification
	Columns        []Column

	colIndex map[string]int
}

// Column returns the named column, if present.
func (t *Table) Column(name string) (*Column, bool) {
	if t.colIndex == nil {
		t.colIndex = make(map[string]int, len(t.Columns))
		for i, col := range t.Columns {
			t.colIndex[col.Name] = i
		}
	}
	i, ok := t.colIndex[name]
	if !ok {
		return nil, false
	}
	return &t.Columns[i], true
}

// ShortName returns the table name without its schema prefix.
func (t *Table) ShortName() string {
	return ShortTableName(t.Name)
}

// SelectableColumns returns the names of every non-identifiable column in
// catalogue order. This is what "select all" operates on.
func (t *Table) SelectableColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if !col.Identifiable {
			names = append(names, col.Name)
		}
	}
	return names
}

// Catalogue is the full set of available tables, ordered by name.
type Catalogue struct {
	Tables []Table

	index map[string]int
}

// New builds a catalogue from the given tables, preserving their order.
func New(tables []Table) *Catalogue {
	c := &Catalogue{Tables: tables}
	c.reindex()
	return c
}

func (c *Catalogue) reindex() {
	c.index = make(map[string]int, len(c.Tables))
	for i, table := range c.Tables {
		c.index[table.Name] = i
	}
}

// Table returns the named table, if present.
func (c *Catalogue) Table(name string) (*Table, bool) {
	if c.index == nil {
		c.reindex()
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.Tables[i], true
}

// Len returns the number of tables in the catalogue.
func (c *Catalogue) Len() int {
	return len(c.Tables)
}

// Search returns a catalogue reduced to tables matching the query. The match
// is a case-insensitive substring test over the table name, column names and
// column descriptions. An empty query returns the catalogue unchanged.
func (c *Catalogue) Search(query string) *Catalogue {
	if query == "" {
		return c
	}
	needle := strings.ToLower(query)

	var matched []Table
	for _, table := range c.Tables {
		if strings.Contains(searchText(&table), needle) {
			matched = append(matched, table)
		}
	}
	return New(matched)
}

// searchText builds the lowercase haystack for one table.
func searchText(t *Table) string {
	parts := []string{strings.ToLower(t.Name)}
	for _, col := range t.Columns {
		parts = append(parts, strings.ToLower(col.Name), strings.ToLower(col.Description))
	}
	return strings.Join(parts, "\n")
}

// tableWire is the backend JSON shape of one table. Column order inside the
// JSON object is not preserved by encoding/json, so columns are sorted by
// name on decode.
type tableWire struct {
	Description    string            `json:"table_description"`
	NumberOfRows   int64             `json:"number_of_rows"`
	PrimaryKeys    []string          `json:"primary_keys"`
	Classification Classification    `json:"table_classification"`
	Columns        map[string]Column `json:"columns"`
}

// UnmarshalJSON decodes the backend catalogue map into a name-sorted
// catalogue.
func (c *Catalogue) UnmarshalJSON(data []byte) error {
	var wire map[string]tableWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	names := make([]string, 0, len(wire))
	for name := range wire {
		names = append(names, name)
	}
	sort.Strings(names)

	c.Tables = make([]Table, 0, len(names))
	for _, name := range names {
		entry := wire[name]

		colNames := make([]string, 0, len(entry.Columns))
		for colName := range entry.Columns {
			colNames = append(colNames, colName)
		}
		sort.Strings(colNames)

		columns := make([]Column, 0, len(colNames))
		for _, colName := range colNames {
			col := entry.Columns[colName]
			col.Name = colName
			columns = append(columns, col)
		}

		c.Tables = append(c.Tables, Table{
			Name:           name,
			Description:    entry.Description,
			NumberOfRows:   entry.NumberOfRows,
			PrimaryKeys:    entry.PrimaryKeys,
			Classification: entry.Classification,
			Columns:        columns,
		})
	}
	c.reindex()
	return nil
}

// MarshalJSON encodes the catalogue back into the backend map shape.
func (c *Catalogue) MarshalJSON() ([]byte, error) {
	wire := make(map[string]tableWire, len(c.Tables))
	for _, table := range c.Tables {
		columns := make(map[string]Column, len(table.Columns))
		for _, col := range table.Columns {
			columns[col.Name] = col
		}
		wire[table.Name] = tableWire{
			Description:    table.Description,
			NumberOfRows:   table.NumberOfRows,
			PrimaryKeys:    table.PrimaryKeys,
			Classification: table.Classification,
			Columns:        columns,
		}
	}
	return json.Marshal(wire)
}
