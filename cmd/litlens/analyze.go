package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdulachik/litlens/internal/analysis"
	"github.com/abdulachik/litlens/internal/app"
	"github.com/abdulachik/litlens/internal/config"
	"github.com/abdulachik/litlens/internal/render"
	"github.com/spf13/cobra"
)

var (
	analyzeOriginal  string
	analyzeScript    string
	analyzeSequences int
	analyzeAPIKey    string
	analyzeDocx      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one passage and print the result",
	Long: `Run a single analysis and print the rendered result to stdout.

Examples:
  litlens analyze --original novel.txt --script lecture.txt
  litlens analyze --original novel.txt --script lecture.txt --sequences 5 --docx out.docx`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOriginal, "original", "", "File with the original text")
	analyzeCmd.Flags().StringVar(&analyzeScript, "script", "", "File with the lecture script")
	analyzeCmd.Flags().IntVar(&analyzeSequences, "sequences", 0, "Approximate number of sequences (0 lets the model decide)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Service API key (defaults to the provider's environment key)")
	analyzeCmd.Flags().StringVar(&analyzeDocx, "docx", "", "Also write the result to this .docx file")
	_ = analyzeCmd.MarkFlagRequired("original")
	_ = analyzeCmd.MarkFlagRequired("script")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForAnalyze(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	original, err := os.ReadFile(analyzeOriginal)
	if err != nil {
		return fmt.Errorf("read original text: %w", err)
	}
	script, err := os.ReadFile(analyzeScript)
	if err != nil {
		return fmt.Errorf("read lecture script: %w", err)
	}

	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = cfg.APIKeyForProvider()
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	p := a.Profiles.Current()
	result, err := a.Analyzer.AnalyzeWith(ctx, p, apiKey, analysis.Request{
		OriginalText:        string(original),
		LectureScript:       string(script),
		TargetSequenceCount: analyzeSequences,
	})
	if errors.Is(err, analysis.ErrMissingCredential) {
		return fmt.Errorf("%w: pass --api-key or set the provider's API key variable", err)
	}
	if err != nil {
		return err
	}

	labels := p.Labels
	fmt.Fprint(cmd.OutOrStdout(), render.Text(result, labels))

	if analyzeDocx != "" {
		if err := render.WriteDocx(result, labels, analyzeDocx); err != nil {
			return fmt.Errorf("write docx: %w", err)
		}
		slog.Info("wrote document", "path", analyzeDocx)
	}

	return nil
}
