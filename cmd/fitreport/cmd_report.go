package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"fitreport/internal/extraction"
	"fitreport/internal/fitness"
	"fitreport/internal/generation"
	"fitreport/internal/logging"
	"fitreport/internal/report"
	"fitreport/internal/usage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var (
	startDate    string
	endDate      string
	outputFormat string
)

// reportCmd builds a generated report
var reportCmd = &cobra.Command{
	Use:   "report [activity|sleep]",
	Short: "Build a generated activity or sleep report for a date window",
	Long: `Extracts the daily series for the window, summarizes it, and has the
text generation service write a report that is then recovered into JSON.

Example:
  fitreport report activity --start 2025-07-01 --end 2025-07-07`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"activity", "sleep"},
	RunE:      runReport,
}

// seriesCmd prints the raw gap-filled payload
var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Print the gap-filled step and sleep series for a date window as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSeries,
}

func init() {
	for _, cmd := range []*cobra.Command{reportCmd, seriesCmd} {
		cmd.Flags().StringVar(&startDate, "start", "", "First date, YYYY-MM-DD (default: report.default_days before --end)")
		cmd.Flags().StringVar(&endDate, "end", "", "Last date, YYYY-MM-DD (default: today, UTC)")
	}
	reportCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")
}

// resolveDates fills in omitted window ends from the configured default.
func resolveDates(now time.Time) (string, string) {
	start, end := startDate, endDate
	if end == "" {
		_, end = report.DefaultDates(now, 1)
	}
	if start == "" {
		if e, err := time.Parse("2006-01-02", end); err == nil {
			start, _ = report.DefaultDates(e, cfg.Report.DefaultDays)
		}
	}
	return start, end
}

// newService wires the report service from config. A nil generator is fine
// for commands that never generate text, and a nil tracker skips usage.
func newService(gen generation.Generator, tracker *usage.Tracker) *report.Service {
	creds := fitness.NewFileCredentials(cfg.Fit.TokenFile, cfg.Fit.ClientID, cfg.Fit.ClientSecret,
		logs.For(logging.CategoryFitness))
	sources := func(ctx context.Context, token *oauth2.Token) (extraction.Source, error) {
		src, err := fitness.NewSource(ctx, token, fitness.Config{
			Endpoint: cfg.Fit.Endpoint,
			Timeout:  cfg.GetFitTimeout(),
		}, logs.For(logging.CategoryFitness))
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	genTimeout := cfg.GetGenerationTimeout()
	if timeout > 0 {
		genTimeout = timeout
	}
	return report.NewService(creds, sources, gen, logs, report.Options{
		GenerationTimeout: genTimeout,
		IncludeHeartRate:  cfg.Report.IncludeHeartRate,
		Usage:             tracker,
	})
}

func runReport(cmd *cobra.Command, args []string) error {
	kind, err := report.ParseKind(args[0])
	if err != nil {
		return err
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("%w: unknown output format %q (valid: text, json)", report.ErrInvalidInput, outputFormat)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := generation.NewGemini(ctx, generation.GeminiConfig{
		APIKey:          cfg.Generation.APIKey,
		Model:           cfg.Generation.Model,
		Temperature:     cfg.Generation.Temperature,
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
	}, logs.For(logging.CategoryGeneration))
	if err != nil {
		return err
	}

	var tracker *usage.Tracker
	if cfg.Report.UsageFile != "" {
		if tracker, err = usage.NewTracker(cfg.Report.UsageFile); err != nil {
			return err
		}
		defer func() {
			if err := tracker.Save(); err != nil {
				logger.Warn("failed to save usage", zap.Error(err))
			}
		}()
	}

	start, end := resolveDates(time.Now())
	rep, err := newService(gen, tracker).Build(ctx, kind, start, end)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), rep)
	}
	renderReport(cmd.OutOrStdout(), rep, time.Now())
	return nil
}

func runSeries(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start, end := resolveDates(time.Now())
	payload, err := newService(nil, nil).Payload(ctx, start, end)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), payload)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
