package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a digiguide configuration file",
	Long: `Writes a .digiguide.yml with default settings. With --interactive it runs
a wizard that asks for the data directory, guides, language and port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgFile); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}

		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			_, err := config.RunWizard(cfgFile)
			return err
		}

		if err := config.DefaultConfig().Save(cfgFile); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Configuration saved to %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("interactive", "i", false, "run the interactive wizard")
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
