package db

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/example/shiftdesk/internal/core/ident"
	"github.com/example/shiftdesk/internal/ports/secondary"
)

// TimeLayout is the stored form of every timestamp.
const TimeLayout = time.RFC3339

// RowID returns the identifier cell of row.
func RowID(row secondary.Row) (int64, error) {
	if len(row) == 0 {
		return 0, nil
	}
	return ident.Parse(row[colID])
}

// ShiftStatus returns the status cell of a shifts row without decoding it.
func ShiftStatus(row secondary.Row) string {
	return cell(row, shiftColStatus)
}

// RequestStatus returns the status cell of a requests row without decoding it.
func RequestStatus(row secondary.Row) string {
	return cell(row, requestColStatus)
}

// Filter narrows a scan to the rows accepted by pred. Errors pass through.
func Filter(seq iter.Seq2[secondary.Row, error], pred func(secondary.Row) bool) iter.Seq2[secondary.Row, error] {
	return func(yield func(secondary.Row, error) bool) {
		for row, err := range seq {
			if err != nil {
				yield(nil, err)
				return
			}
			if pred(row) && !yield(row, nil) {
				return
			}
		}
	}
}

// EncodeWorker converts a worker record to a row.
func EncodeWorker(r *secondary.WorkerRecord) secondary.Row {
	return secondary.Row{
		ident.Format(r.ID),
		r.DisplayName,
		formatTime(r.RegisteredAt),
	}
}

// DecodeWorker converts a row to a worker record.
func DecodeWorker(row secondary.Row) (*secondary.WorkerRecord, error) {
	d := decoder{row: row}
	r := &secondary.WorkerRecord{
		ID:           d.id(colID),
		DisplayName:  cell(row, 1),
		RegisteredAt: d.time(2),
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode worker row: %w", d.err)
	}
	return r, nil
}

// EncodeShift converts a shift record to a row.
func EncodeShift(r *secondary.ShiftRecord) secondary.Row {
	duration := ""
	if !r.ClosedAt.IsZero() {
		duration = strconv.FormatFloat(r.DurationHours, 'f', 2, 64)
	}
	return secondary.Row{
		ident.Format(r.ID),
		ident.Format(r.WorkerID),
		r.PropertyID,
		formatTime(r.OpenedAt),
		formatTime(r.ClosedAt),
		duration,
		r.Status,
	}
}

// DecodeShift converts a row to a shift record.
func DecodeShift(row secondary.Row) (*secondary.ShiftRecord, error) {
	d := decoder{row: row}
	r := &secondary.ShiftRecord{
		ID:            d.id(colID),
		WorkerID:      d.id(shiftColWorker),
		PropertyID:    cell(row, shiftColProperty),
		OpenedAt:      d.time(shiftColOpened),
		ClosedAt:      d.time(shiftColClosed),
		DurationHours: d.float(shiftColDuration),
		Status:        cell(row, shiftColStatus),
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode shift row: %w", d.err)
	}
	return r, nil
}

// EncodeRequest converts a request record to a row.
func EncodeRequest(r *secondary.RequestRecord) secondary.Row {
	return secondary.Row{
		ident.Format(r.ID),
		ident.Format(r.WorkerID),
		r.PropertyID,
		r.Category,
		r.Description,
		r.DeliveryNote,
		r.Status,
		formatTime(r.CreatedAt),
		formatTime(r.CompletedAt),
		r.NotificationRef,
	}
}

// DecodeRequest converts a row to a request record.
func DecodeRequest(row secondary.Row) (*secondary.RequestRecord, error) {
	d := decoder{row: row}
	r := &secondary.RequestRecord{
		ID:              d.id(colID),
		WorkerID:        d.id(requestColWorker),
		PropertyID:      cell(row, requestColProperty),
		Category:        cell(row, requestColCategory),
		Description:     cell(row, requestColDescription),
		DeliveryNote:    cell(row, requestColDeliveryNote),
		Status:          cell(row, requestColStatus),
		CreatedAt:       d.time(requestColCreated),
		CompletedAt:     d.time(requestColCompleted),
		NotificationRef: cell(row, requestColNotification),
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode request row: %w", d.err)
	}
	return r, nil
}

func cell(row secondary.Row, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// decoder keeps the first cell error so codecs read like plain assignments.
type decoder struct {
	row secondary.Row
	err error
}

func (d *decoder) id(i int) int64 {
	v, err := ident.Parse(cell(d.row, i))
	d.keep(i, err)
	return v
}

func (d *decoder) time(i int) time.Time {
	s := strings.TrimSpace(cell(d.row, i))
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, s)
	d.keep(i, err)
	return t
}

func (d *decoder) float(i int) float64 {
	s := strings.TrimSpace(cell(d.row, i))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	d.keep(i, err)
	return v
}

func (d *decoder) keep(i int, err error) {
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("column %d: %w", i, err)
	}
}
