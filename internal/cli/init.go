package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/config"
	"github.com/example/shiftdesk/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the shiftdesk data directory",
		Long: `Create the data directory and its tables (workers, shifts, requests),
write a default configuration file if none exists, and take a startup
backup when backup.on_start is set. Safe to run repeatedly: existing
tables are kept and upgraded to the current columns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := cfg.Save(path); err != nil {
					return err
				}
				fmt.Printf("✓ Config written to %s\n", path)
			}

			fmt.Printf("Initializing shiftdesk data at %s (%s backend)\n", cfg.DataDir, cfg.Backend)

			report, err := wire.Startup(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			fmt.Println("✓ Tables ready: workers, shifts, requests")

			if report != nil {
				fmt.Printf("✓ Backup: %d snapshot(s) in %s", len(report.Created), cfg.GetBackupDir())
				if len(report.Failed) > 0 {
					fmt.Printf(", %d failed", len(report.Failed))
				}
				fmt.Println()
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  shiftdesk worker register 1001 \"Anna\"")
			fmt.Println("  shiftdesk shift open 1001 P1")
			fmt.Println("  shiftdesk doctor")

			return nil
		},
	}
}
