package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/digiguide/digiguide/internal/imageproxy"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Manage the image proxy cache",
}

var imagesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached images older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		olderThan, _ := cmd.Flags().GetDuration("older-than")
		if olderThan <= 0 {
			olderThan = cfg.Images.TTL
		}

		res, err := imageproxy.Prune(cfg.Images.CacheDir, olderThan, time.Now())
		if err != nil {
			return fmt.Errorf("pruning %s: %w", cfg.Images.CacheDir, err)
		}
		fmt.Printf("Removed %d cached image(s) and %d temp file(s), %d bytes freed\n", res.Entries, res.Temp, res.Bytes)
		return nil
	},
}

func init() {
	imagesPruneCmd.Flags().Duration("older-than", 0, "age cutoff (defaults to images.ttl)")
	imagesCmd.AddCommand(imagesPruneCmd)
	rootCmd.AddCommand(imagesCmd)
}
