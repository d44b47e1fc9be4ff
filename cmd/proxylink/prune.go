package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"proxylink/internal/config"
	"proxylink/internal/db"
	"proxylink/internal/logger"
)

var pruneCmd = &cobra.Command{
	Use:   "prune [limit]",
	Short: "Shrink the link archive to a specific size",
	Long: `Removes the oldest archived links until the total count matches the target limit.
If no limit is provided, the 'archive.max_links' value from config.yaml is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}

		targetLimit := cfg.Archive.MaxLinks
		if len(args) > 0 {
			val, err := strconv.Atoi(args[0])
			if err != nil {
				logger.Log.Fatalf("Invalid limit argument: %v", err)
			}
			targetLimit = val
			logger.Log.Infof("🎯 Pruning target manually set to: %d", targetLimit)
		}

		database, err := db.Connect(cfg.Archive.Path)
		if err != nil {
			logger.Log.Fatalf("Error connecting to archive: %v", err)
		}
		defer db.Close(database)
		if err := db.Migrate(database); err != nil {
			logger.Log.Fatalf("Error migrating archive: %v", err)
		}

		removed, err := db.Prune(database, targetLimit)
		if err != nil {
			logger.Log.Errorf("Pruning failed: %v", err)
			return
		}
		logger.Log.Infof("✅ Archive maintenance complete. Removed %d links.", removed)
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
