package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

// SQLiteExtractor reads the structure of the source tables from SQLite.
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite structure extractor.
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
	}
}

// ExtractStructure extracts the structure (columns, primary keys, row
// counts) of the specified tables. If tables is empty, every table in the
// database is extracted.
func (e *SQLiteExtractor) ExtractStructure(ctx context.Context, tables []string) ([]catalogue.SourceTable, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	var extracted []catalogue.SourceTable
	for _, tableName := range tableNames {
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", tableName, err)
		}
		extracted = append(extracted, *table)
	}

	return extracted, nil
}

// getTableNames returns the list of tables to extract
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractTable extracts all information for a single table
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*catalogue.SourceTable, error) {
	table := &catalogue.SourceTable{Name: tableName}

	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns
	table.PrimaryKey = pk

	count, err := e.countRows(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	table.NumberOfRows = count

	return table, nil
}

// extractColumns extracts column information and primary key columns for a
// table. PRAGMA table_info reports both in one pass.
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]catalogue.SourceColumn, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []catalogue.SourceColumn
	var pkColumns []string

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, err
		}

		columns = append(columns, catalogue.SourceColumn{
			Name:     name,
			DataType: colType,
			Nullable: notNull == 0,
		})

		// Track primary key columns
		if pk > 0 {
			pkColumns = append(pkColumns, name)
		}
	}

	return columns, pkColumns, rows.Err()
}

// quoteIdent double-quotes an identifier so table names cannot break out of
// the statement.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// countRows counts the rows of a table.
func (e *SQLiteExtractor) countRows(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(tableName))

	var count int64
	if err := e.client.GetDB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
