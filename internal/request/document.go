// Package request derives the submission payload from a selection and
// models the lifecycle of a submitted data access request.
package request

import (
	"github.com/google/uuid"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
	"github.com/civic-health-innovation-labs/AppDAR/internal/selection"
)

// ColumnEntry is one selected column as persisted with a request. The
// description is copied in because the catalogue may change later.
type ColumnEntry struct {
	Name        string `json:"column_name"`
	Description string `json:"column_description"`
}

// TableEntry is one selected table with its columns and optional WHERE
// predicate.
type TableEntry struct {
	Name           string        `json:"table_name"`
	Description    string        `json:"table_description"`
	WhereStatement *string       `json:"where_statement"`
	Columns        []ColumnEntry `json:"columns"`
}

// Workspace references the workspace the data should be provisioned into.
type Workspace struct {
	UUID uuid.UUID `json:"workspace_uuid"`
	Name string    `json:"workspace_name"`
}

// User references a user of the system.
type User struct {
	UUID     uuid.UUID `json:"user_uuid"`
	FullName string    `json:"user_full_name"`
	Username string    `json:"user_username"`
}

// BuildTablesAndColumns derives the normalized request entries from the
// selection. Tables appear in selection order and columns in the order they
// were selected. Every selected table and column must still exist in the
// catalogue; a miss is a LookupError, never a silent drop.
func BuildTablesAndColumns(cat *catalogue.Catalogue, sel *selection.Selection) ([]TableEntry, error) {
	var entries []TableEntry
	for _, tableName := range sel.Tables() {
		table, ok := cat.Table(tableName)
		if !ok {
			return nil, &LookupError{Table: tableName}
		}

		entry := TableEntry{
			Name:        tableName,
			Description: table.Description,
		}
		if where, ok := sel.Filter(tableName); ok {
			entry.WhereStatement = &where
		}

		for _, columnName := range sel.Columns(tableName) {
			col, ok := table.Column(columnName)
			if !ok {
				return nil, &LookupError{Table: tableName, Column: columnName}
			}
			entry.Columns = append(entry.Columns, ColumnEntry{
				Name:        columnName,
				Description: col.Description,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Draft carries the user-entered details of a request before submission.
type Draft struct {
	Title         string
	Justification string
	Workspace     *Workspace
	Comment       string
}

// Submission is the complete request document posted to the backend.
type Submission struct {
	Title            string       `json:"title"`
	Justification    string       `json:"justification"`
	Workspace        Workspace    `json:"workspace"`
	Comment          *string      `json:"comment"`
	TablesAndColumns []TableEntry `json:"tables_and_columns"`
}

// Validate checks every submission precondition and reports all of the
// missing ones together.
func (d *Draft) Validate(sel *selection.Selection) error {
	var problems []string
	if d.Title == "" {
		problems = append(problems, "title is missing")
	}
	if d.Justification == "" {
		problems = append(problems, "justification is missing")
	}
	if d.Workspace == nil {
		problems = append(problems, "target workspace is missing")
	}
	if sel.Empty() {
		problems = append(problems, "at least one table/column has to be selected")
	}
	return validationError(problems)
}

// Build validates the draft and assembles the submission document. An empty
// comment is normalized to null.
func (d *Draft) Build(cat *catalogue.Catalogue, sel *selection.Selection) (*Submission, error) {
	if err := d.Validate(sel); err != nil {
		return nil, err
	}

	entries, err := BuildTablesAndColumns(cat, sel)
	if err != nil {
		return nil, err
	}

	sub := &Submission{
		Title:            d.Title,
		Justification:    d.Justification,
		Workspace:        *d.Workspace,
		TablesAndColumns: entries,
	}
	if d.Comment != "" {
		comment := d.Comment
		sub.Comment = &comment
	}
	return sub, nil
}
