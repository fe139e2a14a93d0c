//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

// findTable is a helper function to find a table by name in the extracted structure
func findTable(sources []catalogue.SourceTable, tableName string) *catalogue.SourceTable {
	for i := range sources {
		if sources[i].Name == tableName {
			return &sources[i]
		}
	}
	return nil
}

// verifyTablesExist checks that all expected tables are present in the extracted structure
func verifyTablesExist(t *testing.T, sources []catalogue.SourceTable, expectedTables []string) {
	t.Helper()

	if len(sources) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(sources))
	}

	tableMap := make(map[string]bool)
	for _, table := range sources {
		tableMap[table.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("Expected table %s not found in extracted structure", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *catalogue.SourceTable, expectedColumns []string) {
	t.Helper()

	columnMap := make(map[string]bool)
	for _, col := range table.Columns {
		columnMap[col.Name] = true
	}

	for _, colName := range expectedColumns {
		if !columnMap[colName] {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *catalogue.SourceTable, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
			return
		}
	}
}

// verifyRowCount checks that a table reports at least min rows. Fixtures can
// grow over time, so only a lower bound is asserted.
func verifyRowCount(t *testing.T, table *catalogue.SourceTable, min int64) {
	t.Helper()

	if table.NumberOfRows < min {
		t.Errorf("Expected at least %d rows in %s, got %d", min, table.Name, table.NumberOfRows)
	}
}

// verifyNullable checks the nullability flag of one column
func verifyNullable(t *testing.T, table *catalogue.SourceTable, columnName string, wantNullable bool) {
	t.Helper()

	for _, col := range table.Columns {
		if col.Name == columnName {
			if col.Nullable != wantNullable {
				t.Errorf("Expected %s.%s nullable=%v, got %v", table.Name, columnName, wantNullable, col.Nullable)
			}
			return
		}
	}
	t.Errorf("Column %s not found in table %s", columnName, table.Name)
}
