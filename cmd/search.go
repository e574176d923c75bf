package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/guide"
	"github.com/digiguide/digiguide/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Fuzzy search digimon, skills, items, bosses and guides",
	Long:  `Searches the catalog and guides the same way /api/search does and prints the ranked hits.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().String("kind", "", "comma-separated kinds: digimon, skill, item, boss, guide")
	searchCmd.Flags().String("lang", "", "language for names (defaults to locale.default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	kindFlag, _ := cmd.Flags().GetString("kind")
	lang, _ := cmd.Flags().GetString("lang")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	kinds, ok := search.ParseKinds(kindFlag)
	if !ok {
		return fmt.Errorf("unknown kind in %q", kindFlag)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if lang == "" {
		lang = cfg.Locale.Default
	}

	src := data.NewSource(data.DirLoader(cfg.Data.Dir))
	holder := search.NewHolder(src, cfg.Search)
	lib := guide.NewLibrary(cfg.Guides)
	if err := lib.Load(); err == nil {
		holder.SetGuides(lib.SearchDocuments())
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Warning: guides not searched: %v\n", err)
	}

	ix, err := holder.Index(context.Background())
	if err != nil {
		return fmt.Errorf("loading game data from %s: %w", cfg.Data.Dir, err)
	}
	hits := ix.Search(args[0], kinds, limit, lang)
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(hits))
	for i, h := range hits {
		fmt.Printf("  %d. [%s] %s  %s\n", i+1, h.Kind, h.Title, h.URL)
		if h.Subtitle != "" {
			fmt.Printf("     %s\n", truncate(h.Subtitle, 120))
		}
	}
	return nil
}
