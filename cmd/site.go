package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/guide"
	"github.com/digiguide/digiguide/internal/progress"
	"github.com/digiguide/digiguide/internal/search"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Export the guides as a static website",
	Long: `Renders every markdown guide to static HTML and writes digimon.json and
search-index.json next to the pages, ready for any static host.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().String("output", "site", "output directory")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outputDir, _ := cmd.Flags().GetString("output")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := data.LoadDir(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("loading game data from %s: %w", cfg.Data.Dir, err)
	}
	lib := guide.NewLibrary(cfg.Guides)
	if err := lib.Load(); err != nil {
		return fmt.Errorf("loading guides: %w", err)
	}

	docs := append(search.CatalogDocuments(c), lib.SearchDocuments()...)
	res, err := guide.Export(ctx, lib, c, docs, outputDir, progress.NewReporter("Exporting site"))
	if err != nil {
		return fmt.Errorf("generating site: %w", err)
	}

	fmt.Printf("Static site generated: %s (%d pages, %d digimon, %d search entries)\n", outputDir, res.Pages, res.Digimon, res.SearchEntries)
	return nil
}
