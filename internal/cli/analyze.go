package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"elements/internal/domain"
	"elements/internal/summarizer"
)

var (
	analyzePrompt string
	analyzeMethod string
	analyzeName   string
	analyzeData   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] file...",
	Short: "Run one analysis element against documents and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	files, err := loadFiles(args)
	if err != nil {
		return err
	}
	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	if verbose {
		if digest, err := buildDigest(summarizer.NewFrequency(), files, analyzeData, cfg.Summary.MaxSentences); err == nil {
			fmt.Fprintf(os.Stderr, "digest: %s\n", digest)
		}
	}
	element := domain.Element{
		Name:   analyzeName,
		Prompt: analyzePrompt,
		Model:  cfg.Provider.ChatModel,
		Method: domain.Method(analyzeMethod),
	}
	result := analyzer.Analyze(cmd.Context(), element, files, analyzeData)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	if !result.Success {
		return errors.New("analysis failed")
	}
	return nil
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "analysis prompt (required)")
	analyzeCmd.Flags().StringVarP(&analyzeMethod, "method", "m", string(domain.MethodReasoning), `analysis method: "reasoning" or "extraction"`)
	analyzeCmd.Flags().StringVarP(&analyzeName, "name", "n", "ad-hoc", "element name for diagnostics")
	analyzeCmd.Flags().StringVar(&analyzeData, "data", "", "supplementary data appended to the document text")
	_ = analyzeCmd.MarkFlagRequired("prompt")
}
