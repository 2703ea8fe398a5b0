package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fitreport/internal/articulation"
	"fitreport/internal/logging"
	"fitreport/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	recoverSchema   string
	recoverFallback string
)

// recoverCmd runs report recovery over saved generator output
var recoverCmd = &cobra.Command{
	Use:   "recover [file]",
	Short: "Recover a report object from saved generator output",
	Long: `Runs the repair steps (fence stripping, placeholder substitution, object
extraction, comment and trailing-comma removal) over text saved from a
generation call and prints the recovered object. Reads stdin when no file
or "-" is given.

Example:
  fitreport recover --schema sleep --fallback inputs.json answer.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecover,
}

func init() {
	recoverCmd.Flags().StringVar(&recoverSchema, "schema", "activity", "Report schema: activity or sleep")
	recoverCmd.Flags().StringVar(&recoverFallback, "fallback", "", "JSON file with placeholder values")
}

func runRecover(cmd *cobra.Command, args []string) error {
	kind, err := report.ParseKind(recoverSchema)
	if err != nil {
		return err
	}

	var raw []byte
	if len(args) == 0 || args[0] == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var fallback map[string]any
	if recoverFallback != "" {
		data, err := os.ReadFile(recoverFallback)
		if err != nil {
			return fmt.Errorf("failed to read fallback: %w", err)
		}
		if err := json.Unmarshal(data, &fallback); err != nil {
			return fmt.Errorf("%w: fallback is not a JSON object: %v", report.ErrInvalidInput, err)
		}
	}

	rec, err := articulation.Recover(raw, kind.Schema(), fallback)
	if err != nil {
		return err
	}
	logs.For(logging.CategoryArticulation).Debug("recovered",
		zap.String("method", string(rec.Method)),
		zap.Strings("steps", rec.Steps),
		zap.Int("warnings", len(rec.Warnings)))
	for _, w := range rec.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}
	return writeJSON(cmd.OutOrStdout(), rec.Value)
}
