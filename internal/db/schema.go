package db

import "github.com/example/shiftdesk/internal/ports/secondary"

// Table definitions. Column order is the wire format shared with every
// process reading the same data directory; append new columns at the end.
var (
	WorkersTable = secondary.TableDef{
		Name:    "workers",
		Columns: []string{"id", "display_name", "registered_at"},
	}

	ShiftsTable = secondary.TableDef{
		Name:    "shifts",
		Columns: []string{"id", "worker_id", "property_id", "opened_at", "closed_at", "duration_hours", "status"},
	}

	RequestsTable = secondary.TableDef{
		Name: "requests",
		Columns: []string{
			"id", "worker_id", "property_id", "category", "description", "delivery_note",
			"status", "created_at", "completed_at", "notification_ref",
		},
	}
)

// Tables returns every table definition in bootstrap order.
func Tables() []secondary.TableDef {
	return []secondary.TableDef{WorkersTable, ShiftsTable, RequestsTable}
}

// Column positions used by row codecs and by scans that only need one cell.
const (
	colID = 0

	shiftColWorker   = 1
	shiftColProperty = 2
	shiftColOpened   = 3
	shiftColClosed   = 4
	shiftColDuration = 5
	shiftColStatus   = 6

	requestColWorker       = 1
	requestColProperty     = 2
	requestColCategory     = 3
	requestColDescription  = 4
	requestColDeliveryNote = 5
	requestColStatus       = 6
	requestColCreated      = 7
	requestColCompleted    = 8
	requestColNotification = 9
)
