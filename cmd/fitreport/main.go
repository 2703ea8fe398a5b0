package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"fitreport/internal/articulation"
	"fitreport/internal/config"
	"fitreport/internal/generation"
	"fitreport/internal/logging"
	"fitreport/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	configPath string
	timeout    time.Duration

	// Set up by PersistentPreRunE
	cfg    *config.Config
	logs   *logging.Logger
	logger *zap.Logger
)

// Exit codes by error kind.
const (
	exitOK           = 0
	exitError        = 1
	exitInvalidInput = 2
	exitUnauth       = 3
	exitGeneration   = 4
	exitRecovery     = 5
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fitreport",
	Short: "fitreport - daily fitness series and generated health reports",
	Long: `fitreport pulls daily step and sleep data from Google Fit, fills the
gaps into one value per day, summarizes it, and asks Gemini to write a
structured report about it.

Extraction falls back across several query methods; a day without data is
reported as zero rather than failing the request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logs, err = logging.New(cfg.Logging.Options(), verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logs.For(logging.CategoryBoot)
		logger.Debug("config loaded", zap.String("path", configPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logs != nil {
			logs.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Text generation timeout (default: generation.timeout from config)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitCode maps an error kind to the process exit status.
func exitCode(err error) int {
	var genErr *generation.Error
	var recErr *articulation.RecoveryError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, report.ErrInvalidInput):
		return exitInvalidInput
	case errors.Is(err, report.ErrUnauthenticated):
		return exitUnauth
	case errors.As(err, &genErr):
		return exitGeneration
	case errors.As(err, &recErr):
		return exitRecovery
	default:
		return exitError
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
