//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/civic-health-innovation-labs/AppDAR/internal/db"
)

func TestMySQLExtraction(t *testing.T) {
	ctx := context.Background()

	// Use environment variable if set, otherwise use default test connection string
	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "testuser:testpassword@tcp(localhost:3306)/testdb"
	}

	client, err := db.NewMySQLClient(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	schemaName, err := db.ParseDatabaseName(connString)
	if err != nil {
		t.Fatalf("Failed to parse database name: %v", err)
	}

	extractor := db.NewMySQLExtractor(client, schemaName)

	sources, err := extractor.ExtractStructure(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to extract structure: %v", err)
	}

	expectedTables := []string{"users", "products", "orders", "order_items"}
	verifyTablesExist(t, sources, expectedTables)

	table := findTable(sources, "users")
	if table == nil {
		t.Fatal("Users table not found")
	}
	verifyPrimaryKey(t, table, []string{"id"})
	verifyColumns(t, table, []string{"id", "username", "email", "status", "created_at"})
	verifyRowCount(t, table, 0)
}
