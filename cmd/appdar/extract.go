package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civic-health-innovation-labs/AppDAR"
	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

var (
	extractDBURL       string
	extractSchema      string
	extractTables      string
	extractExclude     string
	extractAnnotations string
	extractOutput      string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build the catalogue from a source database",
	Long: `Extracts the structure of the source database (columns, data types,
nullability, primary keys, row counts), merges it with the curated
annotations document (descriptions, table classification, identifiable and
free-text column lists) and writes the resulting catalogue JSON.

Tables without an annotation entry, and tables annotated as not-imported,
are left out of the catalogue.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractDBURL, "db-url", "", "Source database URL (postgres://, mysql:// or sqlite://)")
	extractCmd.Flags().StringVar(&extractSchema, "schema", "", "Database schema name (default: public for PostgreSQL)")
	extractCmd.Flags().StringVarP(&extractTables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	extractCmd.Flags().StringVar(&extractExclude, "exclude-tables", "", "Tables to skip (comma-separated, optional)")
	extractCmd.Flags().StringVarP(&extractAnnotations, "annotations", "a", "", "Path to the annotations JSON document (required)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file for the catalogue JSON (default: stdout)")
	_ = extractCmd.MarkFlagRequired("annotations")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractDBURL == "" {
		return fmt.Errorf("--db-url must be specified")
	}

	annFile, err := os.Open(extractAnnotations)
	if err != nil {
		return fmt.Errorf("failed to open annotations file: %w", err)
	}
	defer func() { _ = annFile.Close() }()

	ann, err := catalogue.LoadAnnotations(annFile)
	if err != nil {
		return err
	}

	cat, err := appdar.ExtractCatalogue(cmd.Context(), extractDBURL, &appdar.Options{
		Tables:        splitList(extractTables),
		ExcludeTables: splitList(extractExclude),
		SchemaName:    extractSchema,
	}, ann)
	if err != nil {
		return err
	}

	writer, closeFn, err := openOutput(extractOutput)
	if err != nil {
		return err
	}
	defer closeFn()

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cat); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}
	return nil
}

// splitList parses a comma-separated flag value.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
