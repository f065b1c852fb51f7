package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fauna-gallery/pkg/models"
	"fauna-gallery/pkg/render"
	"fauna-gallery/pkg/services"
)

// ErrUnsupportedFormat is returned for an export format other than json
var ErrUnsupportedFormat = errors.New("unsupported export format")

// newExportCmd creates a new command for exporting a rendered gallery
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export a freshly fetched gallery",
		Long:  `Fetch one image per category and export the rendered gallery in the specified format. Currently supported formats: json.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			if format != "json" {
				return fmt.Errorf("%w: %s (supported formats: json)", ErrUnsupportedFormat, format)
			}

			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log := newLogger(cfg)
			return exportData(cmd.Context(), cmd.OutOrStdout(), newFetcher(cfg, log), log)
		},
	}
}

// exportData fetches every category concurrently and writes the rendered page as JSON.
// A failed category is logged and exported with an empty image, as the page would show it.
func exportData(ctx context.Context, w io.Writer, fetcher services.ImageFetcher, log *slog.Logger) error {
	urls := make([]string, len(models.Categories))

	g, ctx := errgroup.WithContext(ctx)
	for i, category := range models.Categories {
		i, category := i, category
		g.Go(func() error {
			url, err := fetcher.Fetch(ctx, category)
			if err != nil {
				log.Warn("image fetch failed",
					slog.String("category", category.String()),
					slog.String("error", err.Error()))
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	store := services.NewStore()
	for i, category := range models.Categories {
		store.SetURL(category, urls[i])
		store.SetLoading(category, false)
	}

	data, err := json.MarshalIndent(render.Page("", store.Snapshot()), "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling data: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
