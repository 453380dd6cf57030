package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"minds/internal/logging"
	"minds/internal/types"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagDataDir string
	verbose     bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "minds",
	Short: "Adversarial decision counsel backed by a learning council of thinkers",
	Long: `minds answers decision questions with opposing FOR/AGAINST positions from
curated thinkers, each backed by named principles with falsification
conditions, plus a devil's-advocate challenge. Outcomes you report feed
Bayesian posteriors so principles that empirically work rank higher, and
every decision is Ed25519-signed into a tamper-evident hash chain.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yaml (default <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.minds)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(counselCmd)
	rootCmd.AddCommand(outcomeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(verifyChainCmd)
	rootCmd.Version = version
}

// Exit codes for scripting callers.
const (
	exitOK         = 0
	exitBadArgs    = 2
	exitStoreDown  = 3
	exitProvenance = 4
	exitDeadline   = 5
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, types.ErrNotFound):
		return exitBadArgs
	case errors.Is(err, types.ErrStoreUnavailable):
		return exitStoreDown
	case errors.Is(err, types.ErrProvenanceViolation), errors.Is(err, types.ErrInsecureKey):
		return exitProvenance
	case errors.Is(err, errDeadline):
		return exitDeadline
	default:
		return 1
	}
}

var errDeadline = errors.New("deadline exceeded")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
