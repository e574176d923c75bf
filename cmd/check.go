package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/data"
	"github.com/digiguide/digiguide/internal/guide"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate game data and guides",
	Long: `Loads the data files and markdown guides the way the server does and
reports broken evolution links and other problems. Exits non-zero when any
problem is found.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c, err := data.LoadDir(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("loading game data from %s: %w", cfg.Data.Dir, err)
	}
	n := c.Counts()
	fmt.Printf("Data: %s\n", cfg.Data.Dir)
	fmt.Printf("  Digimon: %d\n  Skills:  %d\n  Items:   %d\n  Bosses:  %d\n", n.Digimon, n.Skills, n.Items, n.Bosses)

	lib := guide.NewLibrary(cfg.Guides)
	guideErr := lib.Load()
	if guideErr == nil {
		fmt.Printf("Guides: %s (%d pages)\n", cfg.Guides.Dir, len(lib.Pages()))
	}

	problems := c.Validate()
	if len(problems) == 0 && guideErr == nil {
		fmt.Println("\nNo problems found.")
		return nil
	}

	fmt.Println()
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}
	if guideErr != nil {
		fmt.Printf("  - guides: %v\n", guideErr)
		return fmt.Errorf("%d data problem(s), guides failed to load", len(problems))
	}
	return fmt.Errorf("%d data problem(s)", len(problems))
}
