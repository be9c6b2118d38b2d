package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"elements/internal/summarizer"
	"elements/internal/tui"
)

var consoleData string

var consoleCmd = &cobra.Command{
	Use:   "console file...",
	Short: "Open an interactive console over the given documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(args)
	if err != nil {
		return err
	}
	// Normalizes up front so format problems surface before the
	// screen is taken over.
	digest, err := buildDigest(summarizer.NewFrequency(), files, consoleData, cfg.Summary.MaxSentences)
	if err != nil {
		return err
	}
	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	model := tui.New(analyzer, files, consoleData, digest)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func init() {
	consoleCmd.Flags().StringVar(&consoleData, "data", "", "supplementary data appended to the document text")
}
