package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/takane-go/takane/internal/logging"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonLogs   bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "takane-validate",
	Short: "Validate takane-format on-disk objects",
	Long: `takane-validate checks that a directory is a structurally and
semantically valid takane object of its declared type, and can report the
object's height (leading extent) and dimensions.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logging.Init(logging.Options{Enabled: !quiet, JSON: jsonLogs, Level: level})
		return loadConfig(configPath)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML options file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
