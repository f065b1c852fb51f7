package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/services"
)

// newFetchImageCmd creates a new command for fetching a single image URL
func newFetchImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [category]",
		Short: "Fetch an image URL for one category",
		Long:  `Fetch a fresh image URL for the given category (cat, dog or fish) and print it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := models.ParseCategory(args[0])
			if err != nil {
				return err
			}

			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return fetchImage(cmd.Context(), cmd.OutOrStdout(), newFetcher(cfg, newLogger(cfg)), category)
		},
	}
}

// fetchImage prints the URL returned for category
func fetchImage(ctx context.Context, w io.Writer, fetcher services.ImageFetcher, category models.Category) error {
	url, err := fetcher.Fetch(ctx, category)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, url)
	return nil
}
