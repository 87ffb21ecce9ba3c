package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/wire"
)

// ReportCmd returns the report command
func ReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries of worked hours",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Daily summary (default: today)",
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
			return wire.ReportAdapter().Day(cmd.Context(), date)
		},
	})

	var day string
	hours := &cobra.Command{
		Use:   "hours [worker-id]",
		Short: "Closed hours of a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			date, err := parseOptionalDate(day)
			if err != nil {
				return err
			}
			return wire.ReportAdapter().Hours(cmd.Context(), workerID, date)
		},
	}
	hours.Flags().StringVar(&day, "day", "", "Restrict to one day (YYYY-MM-DD, today, yesterday)")
	cmd.AddCommand(hours)

	return cmd
}
