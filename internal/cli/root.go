// Package cli defines the command-line surface: one-shot analysis and
// the interactive console.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"elements/internal/config"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.AppConfig
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "elements",
	Short: "Run reusable analysis elements against documents",
	Long: `elements analyzes documents with predefined analysis elements.

An element pairs a prompt with a method: "reasoning" answers the prompt
from retrieved document context, "extraction" has the model write a
small script that is executed against the document in a sandbox.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

func initApp(*cobra.Command, []string) error {
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ./config.yaml, then ~/.config/elements/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(consoleCmd)
}
