package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/a11ycoord/internal/config"
)

var (
	verbose bool
	logFile string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "a11ycoord",
	Short: "Accessibility preference and navigation coordinator",
	Long: `a11ycoord keeps accessibility preferences, merges them with what the
device enforces, and drives keyboard/switch traversal and voice commands.

Run without arguments to open the settings screen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logger, err = buildLogger(cfg.Log.Level, cmd.Name() == "tui" || cmd == cmd.Root())
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

// buildLogger writes to stderr, or to --log-file. The full-screen UI owns the
// terminal, so without a log file it logs nothing.
func buildLogger(level string, interactive bool) (*zap.Logger, error) {
	if interactive && logFile == "" {
		return zap.NewNop(), nil
	}
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	prefsShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Dump the sqlite settings table instead")
	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsSetCmd)
	prefsCmd.AddCommand(prefsResetCmd)

	deviceCmd.AddCommand(deviceShowCmd)
	deviceCmd.AddCommand(deviceSetCmd)

	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
