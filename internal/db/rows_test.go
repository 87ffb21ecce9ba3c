package db

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/example/shiftdesk/internal/ports/secondary"
)

var (
	opened = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	closed = time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
)

func TestEncoders_MatchTableWidth(t *testing.T) {
	tests := []struct {
		name string
		row  secondary.Row
		def  secondary.TableDef
	}{
		{"worker", EncodeWorker(&secondary.WorkerRecord{ID: 1}), WorkersTable},
		{"shift", EncodeShift(&secondary.ShiftRecord{ID: 1}), ShiftsTable},
		{"request", EncodeRequest(&secondary.RequestRecord{ID: 1}), RequestsTable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.row) != len(tt.def.Columns) {
				t.Errorf("row has %d cells, %s has %d columns", len(tt.row), tt.def.Name, len(tt.def.Columns))
			}
		})
	}
}

func TestEncodeShift_OpenLeavesCloseCellsBlank(t *testing.T) {
	row := EncodeShift(&secondary.ShiftRecord{
		ID: 3, WorkerID: 42, PropertyID: "P1", OpenedAt: opened, Status: "open",
	})

	want := secondary.Row{"3", "42", "P1", "2024-03-15T09:00:00Z", "", "", "open"}
	if !slices.Equal(row, want) {
		t.Errorf("EncodeShift() = %v, want %v", row, want)
	}
}

func TestEncodeShift_ClosedFormatsDurationAndUTC(t *testing.T) {
	rome := time.FixedZone("CET", 60*60)
	row := EncodeShift(&secondary.ShiftRecord{
		ID: 3, WorkerID: 42, PropertyID: "P1",
		OpenedAt:      opened.In(rome),
		ClosedAt:      closed.In(rome),
		DurationHours: 8.5,
		Status:        "closed",
	})

	if row[shiftColOpened] != "2024-03-15T09:00:00Z" {
		t.Errorf("opened_at = %q, want UTC form", row[shiftColOpened])
	}
	if row[shiftColClosed] != "2024-03-15T17:30:00Z" {
		t.Errorf("closed_at = %q, want UTC form", row[shiftColClosed])
	}
	if row[shiftColDuration] != "8.50" {
		t.Errorf("duration_hours = %q, want 8.50", row[shiftColDuration])
	}
}

func TestDecodeShift(t *testing.T) {
	r, err := DecodeShift(secondary.Row{"3", "42", "P1", "2024-03-15T09:00:00Z", "2024-03-15T17:30:00Z", "8.50", "closed"})
	if err != nil {
		t.Fatalf("DecodeShift failed: %v", err)
	}
	if r.ID != 3 || r.WorkerID != 42 || r.PropertyID != "P1" || r.Status != "closed" {
		t.Errorf("unexpected record %+v", r)
	}
	if !r.OpenedAt.Equal(opened) || !r.ClosedAt.Equal(closed) {
		t.Errorf("times = %v / %v", r.OpenedAt, r.ClosedAt)
	}
	if r.DurationHours != 8.5 {
		t.Errorf("duration = %v, want 8.5", r.DurationHours)
	}
}

func TestDecodeShift_BlankAndShortCells(t *testing.T) {
	tests := []struct {
		name string
		row  secondary.Row
	}{
		{"blank close cells", secondary.Row{"3", "42", "P1", "2024-03-15T09:00:00Z", "", " ", "open"}},
		{"row cut after opened_at", secondary.Row{"3", "42", "P1", "2024-03-15T09:00:00Z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := DecodeShift(tt.row)
			if err != nil {
				t.Fatalf("DecodeShift failed: %v", err)
			}
			if !r.ClosedAt.IsZero() {
				t.Errorf("expected zero closed_at, got %v", r.ClosedAt)
			}
			if r.DurationHours != 0 {
				t.Errorf("expected zero duration, got %v", r.DurationHours)
			}
			if !r.OpenedAt.Equal(opened) {
				t.Errorf("opened_at = %v", r.OpenedAt)
			}
		})
	}
}

func TestDecodeShift_Errors(t *testing.T) {
	tests := []struct {
		name   string
		row    secondary.Row
		column string
	}{
		{"bad id", secondary.Row{"x3", "42", "P1", "", "", "", "open"}, "column 0"},
		{"bad worker", secondary.Row{"3", "forty-two", "P1", "", "", "", "open"}, "column 1"},
		{"bad opened_at", secondary.Row{"3", "42", "P1", "15/03/2024 09:00", "", "", "open"}, "column 3"},
		{"bad duration", secondary.Row{"3", "42", "P1", "", "", "8,5", "closed"}, "column 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeShift(tt.row)
			if err == nil {
				t.Fatal("expected decode error")
			}
			if !strings.Contains(err.Error(), tt.column) {
				t.Errorf("error %q does not name %s", err, tt.column)
			}
		})
	}
}

func TestDecodeShift_KeepsFirstError(t *testing.T) {
	_, err := DecodeShift(secondary.Row{"3", "bad", "P1", "bad", "", "bad", "open"})
	if err == nil || !strings.Contains(err.Error(), "column 1") {
		t.Errorf("expected the first failing column, got %v", err)
	}
}

func TestDecodeRequest(t *testing.T) {
	row := EncodeRequest(&secondary.RequestRecord{
		ID: 9, WorkerID: 42, PropertyID: "P1", Category: "generic",
		Description: `Towels, "large"`, DeliveryNote: "door", Status: "pending", CreatedAt: opened,
	})
	if row[requestColCompleted] != "" {
		t.Errorf("completed_at = %q, want blank while pending", row[requestColCompleted])
	}

	r, err := DecodeRequest(row)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if r.Description != `Towels, "large"` || r.DeliveryNote != "door" {
		t.Errorf("text cells = %q / %q", r.Description, r.DeliveryNote)
	}
	if !r.CreatedAt.Equal(opened) || !r.CompletedAt.IsZero() {
		t.Errorf("times = %v / %v", r.CreatedAt, r.CompletedAt)
	}
}

func TestDecodeRequest_OlderRowWithoutNotificationRef(t *testing.T) {
	r, err := DecodeRequest(secondary.Row{"9", "42", "P1", "generic", "Soap", "", "completed", "2024-03-15T09:00:00Z", "2024-03-15T17:30:00Z"})
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if r.NotificationRef != "" {
		t.Errorf("expected blank notification ref, got %q", r.NotificationRef)
	}
	if !r.CompletedAt.Equal(closed) {
		t.Errorf("completed_at = %v", r.CompletedAt)
	}
}

func TestDecodeRequest_BadCreatedAt(t *testing.T) {
	_, err := DecodeRequest(secondary.Row{"9", "42", "P1", "generic", "Soap", "", "pending", "yesterday", "", ""})
	if err == nil || !strings.Contains(err.Error(), "column 7") {
		t.Errorf("expected created_at error, got %v", err)
	}
}

func TestDecodeWorker(t *testing.T) {
	r, err := DecodeWorker(EncodeWorker(&secondary.WorkerRecord{ID: 42, DisplayName: "Anna", RegisteredAt: opened}))
	if err != nil {
		t.Fatalf("DecodeWorker failed: %v", err)
	}
	if r.ID != 42 || r.DisplayName != "Anna" || !r.RegisteredAt.Equal(opened) {
		t.Errorf("unexpected record %+v", r)
	}

	if _, err := DecodeWorker(secondary.Row{"", "Anna", "not a time"}); err == nil {
		t.Error("expected error for bad registered_at")
	}
}

func TestRowIDAndStatus(t *testing.T) {
	if id, err := RowID(nil); err != nil || id != 0 {
		t.Errorf("RowID(nil) = %d, %v", id, err)
	}
	if id, err := RowID(secondary.Row{" 12 "}); err != nil || id != 12 {
		t.Errorf("RowID = %d, %v; want 12", id, err)
	}
	if _, err := RowID(secondary.Row{"twelve"}); err == nil {
		t.Error("expected error for non-numeric id")
	}
	if got := ShiftStatus(secondary.Row{"1", "2"}); got != "" {
		t.Errorf("ShiftStatus on short row = %q", got)
	}
	if got := RequestStatus(EncodeRequest(&secondary.RequestRecord{Status: "pending"})); got != "pending" {
		t.Errorf("RequestStatus = %q", got)
	}
}

func TestFilter(t *testing.T) {
	source := func(rows []secondary.Row, fail error) iter.Seq2[secondary.Row, error] {
		return func(yield func(secondary.Row, error) bool) {
			for _, r := range rows {
				if !yield(r, nil) {
					return
				}
			}
			if fail != nil {
				yield(nil, fail)
			}
		}
	}
	rows := []secondary.Row{{"1", "pending"}, {"2", "completed"}, {"3", "pending"}}
	pending := func(r secondary.Row) bool { return r[1] == "pending" }

	var ids []string
	for row, err := range Filter(source(rows, nil), pending) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, row[0])
	}
	if !slices.Equal(ids, []string{"1", "3"}) {
		t.Errorf("filtered ids = %v", ids)
	}

	boom := errors.New("disk gone")
	var got error
	for _, err := range Filter(source(rows, boom), pending) {
		if err != nil {
			got = err
		}
	}
	if !errors.Is(got, boom) {
		t.Errorf("expected scan error to pass through, got %v", got)
	}

	// Early break stops the source.
	count := 0
	for range Filter(source(rows, nil), func(secondary.Row) bool { return true }) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected a single row before break, got %d", count)
	}
}
