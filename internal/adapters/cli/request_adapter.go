package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiftdesk/internal/ports/primary"
)

// RequestAdapter is a thin adapter that translates CLI operations to RequestService calls.
type RequestAdapter struct {
	service primary.RequestService
	out     io.Writer
	loc     *time.Location
}

// NewRequestAdapter creates a new RequestAdapter. Times are shown in loc.
func NewRequestAdapter(service primary.RequestService, out io.Writer, loc *time.Location) *RequestAdapter {
	return &RequestAdapter{service: service, out: out, loc: loc}
}

// Create records a new request.
func (a *RequestAdapter) Create(ctx context.Context, req primary.CreateRequestRequest) error {
	resp, err := a.service.CreateRequest(ctx, req)
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Created request %d [%s] for %s: %s\n",
		resp.RequestID, resp.Request.Category, resp.Request.PropertyID, resp.Request.Description)
	return nil
}

// Complete marks a request completed.
func (a *RequestAdapter) Complete(ctx context.Context, requestID int64) error {
	r, err := a.service.CompleteRequest(ctx, requestID)
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Request %d completed at %s\n", r.ID, formatTime(r.CompletedAt, a.loc))
	return nil
}

// Purge deletes completed requests.
func (a *RequestAdapter) Purge(ctx context.Context) error {
	removed, err := a.service.PurgeCompleted(ctx)
	if err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Purged %d completed request(s)\n", removed)
	return nil
}

// Pending lists pending requests.
func (a *RequestAdapter) Pending(ctx context.Context) error {
	requests, err := a.service.GetPendingRequests(ctx)
	if err != nil {
		return present(err, a.loc)
	}

	if len(requests) == 0 {
		fmt.Fprintln(a.out, "No pending requests")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-10s %-12s %-20s %-16s %s\n", "ID", "WORKER", "PROPERTY", "CATEGORY", "CREATED", "DESCRIPTION")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────────────────────────")
	for _, r := range requests {
		fmt.Fprintf(a.out, "%-6d %-10d %-12s %-20s %-16s %s\n",
			r.ID, r.WorkerID, r.PropertyID, r.Category, formatTime(r.CreatedAt, a.loc), r.Description)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays a single request.
func (a *RequestAdapter) Show(ctx context.Context, requestID int64) (*primary.Request, error) {
	r, err := a.service.GetRequest(ctx, requestID)
	if err != nil {
		return nil, present(err, a.loc)
	}

	status := color.New(color.FgYellow).Sprint(r.Status)
	if r.IsCompleted() {
		status = color.New(color.FgGreen).Sprint(r.Status)
	}

	fmt.Fprintf(a.out, "\nRequest:  %d\n", r.ID)
	fmt.Fprintf(a.out, "Worker:   %d\n", r.WorkerID)
	fmt.Fprintf(a.out, "Property: %s\n", r.PropertyID)
	fmt.Fprintf(a.out, "Category: %s\n", r.Category)
	fmt.Fprintf(a.out, "Status:   %s\n", status)
	fmt.Fprintf(a.out, "Description: %s\n", r.Description)
	if r.DeliveryNote != "" {
		fmt.Fprintf(a.out, "Delivery: %s\n", r.DeliveryNote)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", formatTime(r.CreatedAt, a.loc))
	if r.IsCompleted() {
		fmt.Fprintf(a.out, "Completed: %s\n", formatTime(r.CompletedAt, a.loc))
	}
	if r.NotificationRef != "" {
		fmt.Fprintf(a.out, "Notification: %s\n", r.NotificationRef)
	}
	fmt.Fprintln(a.out)

	return r, nil
}

// Notify stores the notification reference of a request.
func (a *RequestAdapter) Notify(ctx context.Context, requestID int64, ref string) error {
	if err := a.service.SetNotificationRef(ctx, requestID, ref); err != nil {
		return present(err, a.loc)
	}

	fmt.Fprintf(a.out, "✓ Request %d notification set to %q\n", requestID, ref)
	return nil
}
