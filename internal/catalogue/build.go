package catalogue

import (
	"encoding/json"
	"fmt"
	"io"
)

// SourceColumn is the structure of one column as extracted from the source
// database.
type SourceColumn struct {
	Name     string
	DataType string
	Nullable bool
}

// SourceTable is the structure of one table as extracted from the source
// database.
type SourceTable struct {
	Name         string
	Columns      []SourceColumn
	PrimaryKey   []string
	NumberOfRows int64
}

// TableAnnotation carries the curated metadata for one table: descriptions
// and the column lists that drive classification flags.
type TableAnnotation struct {
	Description        string            `json:"table_description"`
	Classification     Classification    `json:"table_classification"`
	ColumnDescriptions map[string]string `json:"columns_descriptions"`
	FreeTextColumns    []string          `json:"free_text_columns"`
	IdentifiableCols   []string          `json:"other_identifiable_columns"`
	ClientIDColumns    []string          `json:"client_id"`
	DateTimeColumns    []string          `json:"date_time"`
	DateColumns        []string          `json:"date_of_birth"`
}

// Annotations maps table names to their curated metadata.
type Annotations map[string]TableAnnotation

// LoadAnnotations reads an annotations document from r.
func LoadAnnotations(r io.Reader) (Annotations, error) {
	var ann Annotations
	if err := json.NewDecoder(r).Decode(&ann); err != nil {
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}
	return ann, nil
}

// Build merges the extracted source structure with the curated annotations
// into a catalogue. Tables without an annotation entry and tables classified
// as not-imported are dropped: only curated tables are offered to users.
func Build(sources []SourceTable, ann Annotations) *Catalogue {
	var tables []Table
	for _, src := range sources {
		meta, ok := ann[src.Name]
		if !ok || meta.Classification == ClassificationNotImported {
			continue
		}

		columns := make([]Column, 0, len(src.Columns))
		for _, col := range src.Columns {
			columns = append(columns, Column{
				Name:         col.Name,
				Description:  meta.ColumnDescriptions[col.Name],
				Nullable:     col.Nullable,
				DataType:     col.DataType,
				Identifiable: contains(meta.IdentifiableCols, col.Name),
				FreeText:     contains(meta.FreeTextColumns, col.Name),
				ClientID:     contains(meta.ClientIDColumns, col.Name),
				DateTime:     contains(meta.DateTimeColumns, col.Name),
				Date:         contains(meta.DateColumns, col.Name),
			})
		}

		tables = append(tables, Table{
			Name:           src.Name,
			Description:    meta.Description,
			NumberOfRows:   src.NumberOfRows,
			PrimaryKeys:    src.PrimaryKey,
			Classification: meta.Classification,
			Columns:        columns,
		})
	}
	return New(tables)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
