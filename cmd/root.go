package cmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fauna-gallery/pkg/config"
	"fauna-gallery/pkg/logger"
	"fauna-gallery/pkg/services"
)

// Configuration flags
var (
	portNumber  string
	environment string
	logLevel    string
	catURL      string
	dogURL      string
	fishURL     string
	minLoading  string
	supersede   bool
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fauna-gallery",
		Short: "Fauna Gallery shows a cat, a dog and a fish picture side by side",
		Long: `Fauna Gallery is a command line application that serves a single page with one
image card per animal category. Each card fetches a fresh picture from a public image API
and can be regenerated on its own.`,
		SilenceUsage: true,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&environment, "env", "e", "", "Set the ENV (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&catURL, "cat-url", "", "Set the CAT_API_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&dogURL, "dog-url", "", "Set the DOG_API_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&fishURL, "fish-url", "", "Set the FISH_IMAGE_URL (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&minLoading, "min-loading", "", "Set the MIN_LOADING duration (overrides environment variable)")
	rootCmd.PersistentFlags().BoolVar(&supersede, "supersede", false, "Cancel an in-flight fetch when the same card is regenerated")

	// Add commands to root
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newFetchImageCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	overrides := map[string]string{
		"PORT":           portNumber,
		"ENV":            environment,
		"LOG_LEVEL":      logLevel,
		"CAT_API_URL":    catURL,
		"DOG_API_URL":    dogURL,
		"FISH_IMAGE_URL": fishURL,
		"MIN_LOADING":    minLoading,
	}
	if supersede {
		overrides["SUPERSEDE_FETCHES"] = strconv.FormatBool(supersede)
	}
	for key, value := range overrides {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}

// newLogger builds the process logger from the loaded configuration
func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(logger.Config{
		Writer:      os.Stderr,
		Environment: cfg.Environment,
		Level:       logger.ParseLevel(cfg.LogLevel),
	})
}

// newFetcher builds the image fetcher for the configured endpoints
func newFetcher(cfg *config.Config, log *slog.Logger) *services.Fetcher {
	return services.NewFetcher(services.Endpoints{
		CatAPIURL:    cfg.CatAPIURL,
		DogAPIURL:    cfg.DogAPIURL,
		FishImageURL: cfg.FishImageURL,
	}, cfg.FetchTimeout, log)
}
