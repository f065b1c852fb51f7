package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fauna-gallery/pkg/logger"
	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/services"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all animal categories",
		Long:  `List all animal categories in display order with the address each image is read from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			listCategories(cmd.OutOrStdout(), newFetcher(cfg, logger.Discard()))
			return nil
		},
	}
}

// listCategories displays all categories and their image sources
func listCategories(w io.Writer, fetcher *services.Fetcher) {
	fmt.Fprintln(w, "Animal Categories:")
	fmt.Fprintln(w, "==================")

	for _, category := range models.Categories {
		fmt.Fprintf(w, "%s\n", category.Title())
		fmt.Fprintf(w, "  Key: %s\n", category)
		fmt.Fprintf(w, "  Source: %s\n", fetcher.Source(category))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d categories\n", len(models.Categories))
}
