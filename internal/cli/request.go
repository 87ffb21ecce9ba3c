package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/shiftdesk/internal/core/request"
	"github.com/example/shiftdesk/internal/ports/primary"
	"github.com/example/shiftdesk/internal/wire"
)

// RequestCmd returns the request command
func RequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Create and fulfil replenishment requests",
		Long:  "Manage replenishment and issue requests raised by workers.",
	}

	cmd.AddCommand(requestCreateCmd())
	cmd.AddCommand(requestCompleteCmd())
	cmd.AddCommand(requestPurgeCmd())
	cmd.AddCommand(requestPendingCmd())
	cmd.AddCommand(requestShowCmd())
	cmd.AddCommand(requestNotifyCmd())

	return cmd
}

func requestCreateCmd() *cobra.Command {
	var category, note string

	cmd := &cobra.Command{
		Use:   "create [worker-id] [property-id] [description]",
		Short: "Create a request",
		Long: fmt.Sprintf(`Create a pending request.

Categories: %s

Examples:
  shiftdesk request create 42 P1 "Need towels" --category cleaning-materials
  shiftdesk request create 42 P1 "Broken lamp" -c property-issue --note "second floor"`,
			strings.Join(request.Categories, ", ")),
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0], "worker")
			if err != nil {
				return err
			}
			return wire.RequestAdapter().Create(cmd.Context(), primary.CreateRequestRequest{
				WorkerID:     workerID,
				PropertyID:   args[1],
				Category:     category,
				Description:  strings.Join(args[2:], " "),
				DeliveryNote: note,
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", request.CategoryGeneric, "Request category")
	cmd.Flags().StringVar(&note, "note", "", "Delivery note")

	return cmd
}

func requestCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [request-id]",
		Short: "Mark a request completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			return wire.RequestAdapter().Complete(cmd.Context(), requestID)
		},
	}
}

func requestPurgeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every completed request",
		Long:  "Delete every completed request. This cannot be undone; pending requests are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge is irreversible; re-run with --yes to confirm")
			}
			return wire.RequestAdapter().Purge(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")

	return cmd
}

func requestPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List pending requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.RequestAdapter().Pending(cmd.Context())
		},
	}
}

func requestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [request-id]",
		Short: "Show request details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			_, err = wire.RequestAdapter().Show(cmd.Context(), requestID)
			return err
		},
	}
}

func requestNotifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify [request-id] [message-ref]",
		Short: "Store the notification message reference of a request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := parseID(args[0], "request")
			if err != nil {
				return err
			}
			return wire.RequestAdapter().Notify(cmd.Context(), requestID, args[1])
		},
	}
}
