package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/civic-health-innovation-labs/AppDAR/internal/client"
)

var (
	backendEndpoint string
	backendToken    string
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "appdar",
	Short: "Work with AppDAR data access requests from the command line",
	Long: `AppDAR manages data access requests against a curated data catalogue:
browse and search the catalogue, build the catalogue from a source database,
and review, provision or delete submitted requests.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendEndpoint, "endpoint", "", "Base URL of the AppDAR backend")
	rootCmd.PersistentFlags().StringVar(&backendToken, "token", "", "Bearer token for the backend (default: APPDAR_TOKEN env variable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(catalogueCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(reviewScriptCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(deleteCmd)
}

// backendClient builds the REST client from the persistent flags.
func backendClient(cmd *cobra.Command) (*client.Client, error) {
	if backendEndpoint == "" {
		return nil, errMissingEndpoint
	}
	token := backendToken
	if token == "" {
		token = os.Getenv("APPDAR_TOKEN")
	}
	return client.New(backendEndpoint, token), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
