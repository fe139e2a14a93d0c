package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/civic-health-innovation-labs/AppDAR"
	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

var errMissingEndpoint = errors.New("--endpoint must be specified")

var (
	catalogueSearch string
	catalogueFile   string
	catalogueFormat string
	catalogueOutput string
)

var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Browse and search the data catalogue",
	Long: `Fetches the catalogue from the backend (or reads a local catalogue JSON
file) and prints it as a text or markdown listing. The search flag narrows
the catalogue with the same full-text matching the backend applies: a
case-insensitive substring test over table names, column names and column
descriptions.`,
	RunE: runCatalogue,
}

func init() {
	catalogueCmd.Flags().StringVarP(&catalogueSearch, "search", "s", "", "Full-text search filter")
	catalogueCmd.Flags().StringVar(&catalogueFile, "file", "", "Read the catalogue from a local JSON file instead of the backend")
	catalogueCmd.Flags().StringVarP(&catalogueFormat, "format", "f", "text", "Output format: text or markdown")
	catalogueCmd.Flags().StringVarP(&catalogueOutput, "output", "o", "", "Output file (default: stdout)")
}

func runCatalogue(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalogue(cmd)
	if err != nil {
		return err
	}

	// A local file is filtered client-side; the backend filters itself.
	if catalogueFile != "" && catalogueSearch != "" {
		cat = cat.Search(catalogueSearch)
	}

	writer, closeFn, err := openOutput(catalogueOutput)
	if err != nil {
		return err
	}
	defer closeFn()

	return appdar.FormatCatalogue(cat, &appdar.OutputOptions{
		Writer: writer,
		Format: catalogueFormat,
	})
}

func loadCatalogue(cmd *cobra.Command) (*catalogue.Catalogue, error) {
	if catalogueFile != "" {
		data, err := os.ReadFile(catalogueFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalogue file: %w", err)
		}
		var cat catalogue.Catalogue
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("failed to decode catalogue file: %w", err)
		}
		return &cat, nil
	}

	c, err := backendClient(cmd)
	if err != nil {
		return nil, err
	}
	return c.FetchCatalogue(cmd.Context(), catalogueSearch)
}

// openOutput returns the writer for an --output flag, defaulting to stdout.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	closeFn := func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
		}
	}
	return f, closeFn, nil
}
