package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/embeddings"
	"github.com/digiguide/digiguide/internal/guide"
	mcpserver "github.com/digiguide/digiguide/internal/mcp"
	"github.com/digiguide/digiguide/internal/search"
	"github.com/digiguide/digiguide/internal/vectordb"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing guide
search, Digidex lookup, evolution paths and team analysis to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		src := data.NewSource(data.DirLoader(cfg.Data.Dir))
		c, err := src.Catalog(context.Background())
		if err != nil {
			return fmt.Errorf("loading game data from %s: %w", cfg.Data.Dir, err)
		}

		holder := search.NewHolder(src, cfg.Search)
		lib := guide.NewLibrary(cfg.Guides)
		if err := lib.Load(); err != nil {
			// Digidex tools still work without guides.
			fmt.Fprintf(os.Stderr, "Warning: could not load guides from %s: %v\n", cfg.Guides.Dir, err)
		} else {
			holder.SetGuides(lib.SearchDocuments())
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "digiguide MCP server started on stdio (digimon=%d)\n", c.Counts().Digimon)

		srv := mcpserver.NewServer(mcpserver.Deps{
			Source:  src,
			Search:  holder,
			Related: vectordb.NewIndex(src, embeddings.NewHashingEmbedder(embeddings.DefaultDimensions), "", log),
			Team:    cfg.Team,
		})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
