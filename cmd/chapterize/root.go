package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"chapterize/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chapterize",
	Short: "Detect and split chapters in PDF and EPUB documents",
	Long: `Chapterize detects chapter boundaries in PDF and EPUB documents and
splits them into one file per chapter.

Detection tries the document's native structure first (PDF bookmarks,
EPUB table of contents), falls back to typography heuristics, and for
EPUBs falls back again to the manifest reading order. A document where
nothing is found is treated as a single chapter.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.chapterize/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "chapterize home directory (default: ~/.chapterize)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(splitCmd)
}
