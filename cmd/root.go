package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "digiguide",
	Short: "Fan guide server for Digimon game data",
	Long: `DigiGuide serves a Digidex, evolution graphs, searchable tables and
markdown strategy guides over HTTP from static game data files. It also
exports a static site and exposes the guide to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".digiguide.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
