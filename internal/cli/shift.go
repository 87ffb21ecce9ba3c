package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/wire"
)

// ShiftCmd returns the shift command
func ShiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Open, close and list shifts",
		Long:  "Manage worker check-ins (shifts) at properties.",
	}

	cmd.AddCommand(shiftOpenCmd())
	cmd.AddCommand(shiftCloseCmd())
	cmd.AddCommand(shiftShowOpenCmd())
	cmd.AddCommand(shiftOpenListCmd())
	cmd.AddCommand(shiftDayCmd())
	cmd.AddCommand(shiftCompletedCmd())
	cmd.AddCommand(shiftWorkerCmd())

	return cmd
}

func shiftOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [worker-id] [property-id]",
		Short: "Open a shift (check in)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			return wire.ShiftAdapter().Open(cmd.Context(), workerID, args[1])
		},
	}
}

func shiftCloseCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "close [shift-id]",
		Short: "Close a shift (check out)",
		Long: `Close an open shift and record the worked hours.

Examples:
  shiftdesk shift close 12
  shiftdesk shift close 12 --at "2024-03-15 17:30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shiftID, err := parseID(args[0], "shift")
			if err != nil {
				return err
			}
			closedAt, err := parseTimestamp(at)
			if err != nil {
				return err
			}
			return wire.ShiftAdapter().Close(cmd.Context(), shiftID, closedAt)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Close time (default: now)")

	return cmd
}

func shiftShowOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-open [worker-id]",
		Short: "Show the open shift of a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			return wire.ShiftAdapter().ShowOpen(cmd.Context(), workerID)
		},
	}
}

func shiftOpenListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open-list",
		Short: "List every open shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ShiftAdapter().ListOpen(cmd.Context())
		},
	}
}

func shiftDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List shifts opened on a day (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			date, err := parseDate(arg)
			if err != nil {
				return err
			}
			return wire.ShiftAdapter().Day(cmd.Context(), date)
		},
	}
}

func shiftCompletedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "completed",
		Short: "List closed shifts, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ShiftAdapter().Completed(cmd.Context(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum shifts to show (0 for all)")

	return cmd
}

func shiftWorkerCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "worker [worker-id]",
		Short: "List the shifts of a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			fromDate, err := parseOptionalDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseOptionalDate(to)
			if err != nil {
				return err
			}
			return wire.ShiftAdapter().Worker(cmd.Context(), workerID, fromDate, toDate)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")

	return cmd
}
