package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"proxylink/internal/config"
	"proxylink/internal/db"
	"proxylink/internal/geoip"
	"proxylink/internal/logger"
	"proxylink/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show link archive statistics",
	Long:  `Displays a dashboard of the link archive: file sizes, total links, and breakdowns by protocol, source and country.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}
		if !cfg.Archive.Enabled {
			logger.Log.Warn("Archive is disabled in config; showing whatever exists at archive.path.")
		}

		database, err := db.Connect(cfg.Archive.Path)
		if err != nil {
			logger.Log.Fatalf("Error connecting to archive: %v", err)
		}
		defer db.Close(database)
		if err := db.Migrate(database); err != nil {
			logger.Log.Fatalf("Error migrating archive: %v", err)
		}

		var total int64
		database.Model(&model.Link{}).Count(&total)

		byKind, err := db.CountBy(database, "kind")
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		bySource, err := db.CountBy(database, "source")
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}
		byCountry, err := db.CountBy(database, "country")
		if err != nil {
			logger.Log.Fatalf("%v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		fmt.Println("\n📊 \033[1mPROXYLINK ARCHIVE\033[0m")
		fmt.Println("────────────────────────────────────────")

		fmt.Fprintln(w, "\033[1;36m[ SYSTEM ]\033[0m\t")
		fmt.Fprintf(w, "  Archive Path:\t%s\n", cfg.Archive.Path)
		fmt.Fprintf(w, "  DB Size:\t%s\n", formatBytes(getFileSize(cfg.Archive.Path)))
		if walSize := getFileSize(cfg.Archive.Path + "-wal"); walSize > 0 {
			fmt.Fprintf(w, "  WAL Size:\t%s (pending checkpoint)\n", formatBytes(walSize))
		}
		fmt.Fprintf(w, "  Total Links:\t%d\n", total)
		if cfg.Archive.MaxLinks > 0 {
			fmt.Fprintf(w, "  Max Links:\t%d\n", cfg.Archive.MaxLinks)
		}
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ PROTOCOLS ]\033[0m\t")
		printCounts(w, byKind, "")
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ SOURCES ]\033[0m\t")
		printCounts(w, bySource, "")
		fmt.Fprintln(w, "\t")

		fmt.Fprintln(w, "\033[1;36m[ TOP LOCATIONS ]\033[0m\t")
		if len(byCountry) > 5 {
			byCountry = byCountry[:5]
		}
		printCounts(w, byCountry, "country")

		w.Flush()
		fmt.Println("")
	},
}

func printCounts(w *tabwriter.Writer, counts []db.Count, column string) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, c := range counts {
		label := c.Value
		if column == "country" {
			label = geoip.FlagEmoji(c.Value) + " " + c.Value
		}
		fmt.Fprintf(w, "  %s:\t%d\n", label, c.Count)
	}
}

func getFileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
