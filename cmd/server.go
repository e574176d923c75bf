package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digiguide/digiguide/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the guide HTTP server",
	Long: `Starts the DigiGuide HTTP server with the Digidex, tables, evolution
graphs, search, team builder, image proxy, guides and live reload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("watch") {
			cfg.Data.Watch, _ = cmd.Flags().GetBool("watch")
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		app, err := server.NewApp(cfg, log)
		if err != nil {
			return err
		}
		defer app.Close()

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := app.Catalog(ctx)
		if err != nil {
			return fmt.Errorf("loading game data from %s: %w", cfg.Data.Dir, err)
		}
		for _, p := range c.Validate() {
			log.Warn("data problem", zap.String("problem", p.String()))
		}

		n := c.Counts()
		fmt.Fprintf(os.Stderr, "digiguide server v%s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Data: %s (%d digimon, %d skills, %d items, %d bosses)\n", cfg.Data.Dir, n.Digimon, n.Skills, n.Items, n.Bosses)
		fmt.Fprintf(os.Stderr, "  Guides: %s (%d pages)\n", cfg.Guides.Dir, len(app.Guides.Pages()))
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DB.Path)
		if cfg.Data.Watch {
			fmt.Fprintln(os.Stderr, "  Watching for changes")
		}

		return app.Run(ctx)
	},
}

func init() {
	serverCmd.Flags().Int("port", 8080, "port to listen on (overrides config)")
	serverCmd.Flags().Bool("watch", false, "reload data and guides when files change (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
