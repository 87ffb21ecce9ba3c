package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/shiftdesk/internal/cli"
	"github.com/example/shiftdesk/internal/config"
	"github.com/example/shiftdesk/internal/logging"
	"github.com/example/shiftdesk/internal/version"
	"github.com/example/shiftdesk/internal/wire"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "shiftdesk",
		Short:   "shiftdesk - shift and request back office",
		Version: version.String(),
		Long: `shiftdesk records worker check-ins (shifts) at properties and the
replenishment requests they raise, in a data directory shared by every
cooperating bot process.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			logger, err = logging.New(cfg.Logging, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			wire.Configure(cfg, logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := wire.Close(); err != nil && logger != nil {
				logger.Warn("failed to close storage", zap.Error(err))
			}
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.shiftdesk/shiftdesk.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ShiftCmd())
	rootCmd.AddCommand(cli.RequestCmd())
	rootCmd.AddCommand(cli.WorkerCmd())
	rootCmd.AddCommand(cli.ReportCmd())
	rootCmd.AddCommand(cli.BackupCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
