package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/wire"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage the worker registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "register [worker-id] [display-name]",
		Short: "Register a worker under its messaging ID",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			return wire.WorkerAdapter().Register(cmd.Context(), workerID, strings.Join(args[1:], " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkerAdapter().List(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [worker-id]",
		Short: "Show a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			return wire.WorkerAdapter().Show(cmd.Context(), workerID)
		},
	})

	return cmd
}
