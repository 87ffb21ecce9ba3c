package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/wire"
)

// BackupCmd returns the backup command
func BackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot every table and prune old snapshots",
		Long: `Copy every table into the backup directory as <table>.<timestamp>.bak
and delete snapshots older than the retention window (backup.retention_days).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.BackupAdapter().Run(cmd.Context())
		},
	}
}
