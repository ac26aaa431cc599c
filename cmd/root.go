package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/chatstate/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	backendName string
	storagePath string
	storageKey  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatstate",
	Short: "Inspect and operate persisted chat sessions",
	Long: `A CLI for the chat client's conversation state engine.

It reads and writes the versioned session snapshot through a configurable
durable slot (memory, file, sqlite, pebble or redis) and replays streamed
side-panel deltas through the panel reducer.

Quick Start:
  chatstate list                          # List sessions, newest first
  chatstate new --title "Trip plan"       # Start and select a session
  chatstate append <id> --text "Hello"    # Add a user message
  chatstate replay events.jsonl           # Fold panel deltas and print the panel
  chatstate export --format md            # Export as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.chatstate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend: memory, file, sqlite, pebble, redis")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Storage location (directory for file/pebble, database file for sqlite)")
	rootCmd.PersistentFlags().StringVar(&storageKey, "key", "", "Slot key holding the snapshot")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
