package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/shiftdesk/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockShiftService implements primary.ShiftService for testing
type mockShiftService struct {
	openShiftFn    func(ctx context.Context, req primary.OpenShiftRequest) (*primary.OpenShiftResponse, error)
	closeShiftFn   func(ctx context.Context, req primary.CloseShiftRequest) (*primary.CloseShiftResponse, error)
	getOpenShiftFn func(ctx context.Context, workerID int64) (*primary.Shift, error)
	shifts         []*primary.Shift

	// Track calls for verification
	lastOpenReq  primary.OpenShiftRequest
	lastCloseReq primary.CloseShiftRequest
	lastLimit    int
}

func (m *mockShiftService) OpenShift(ctx context.Context, req primary.OpenShiftRequest) (*primary.OpenShiftResponse, error) {
	m.lastOpenReq = req
	if m.openShiftFn != nil {
		return m.openShiftFn(ctx, req)
	}
	s := &primary.Shift{ID: 1, WorkerID: req.WorkerID, PropertyID: req.PropertyID, OpenedAt: testTime, Status: "open"}
	return &primary.OpenShiftResponse{ShiftID: 1, Shift: s}, nil
}

func (m *mockShiftService) CloseShift(ctx context.Context, req primary.CloseShiftRequest) (*primary.CloseShiftResponse, error) {
	m.lastCloseReq = req
	if m.closeShiftFn != nil {
		return m.closeShiftFn(ctx, req)
	}
	s := &primary.Shift{ID: req.ShiftID, Status: "closed", DurationHours: 8.5}
	return &primary.CloseShiftResponse{Shift: s, DurationHours: 8.5}, nil
}

func (m *mockShiftService) GetShift(ctx context.Context, shiftID int64) (*primary.Shift, error) {
	return nil, primary.ErrNotFound
}

func (m *mockShiftService) GetOpenShift(ctx context.Context, workerID int64) (*primary.Shift, error) {
	if m.getOpenShiftFn != nil {
		return m.getOpenShiftFn(ctx, workerID)
	}
	return nil, nil
}

func (m *mockShiftService) GetAllOpen(ctx context.Context) ([]*primary.Shift, error) {
	return m.shifts, nil
}

func (m *mockShiftService) GetByDate(ctx context.Context, date time.Time) ([]*primary.Shift, error) {
	return m.shifts, nil
}

func (m *mockShiftService) GetCompleted(ctx context.Context, limit int) ([]*primary.Shift, error) {
	m.lastLimit = limit
	return m.shifts, nil
}

func (m *mockShiftService) GetByWorker(ctx context.Context, workerID int64, from, to time.Time) ([]*primary.Shift, error) {
	return m.shifts, nil
}

var testTime = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestShiftAdapter() (*ShiftAdapter, *mockShiftService, *bytes.Buffer) {
	mock := &mockShiftService{}
	out := &bytes.Buffer{}
	return NewShiftAdapter(mock, out, time.UTC), mock, out
}

func TestShiftAdapter_Open(t *testing.T) {
	adapter, mock, out := newTestShiftAdapter()

	err := adapter.Open(context.Background(), 42, "P1")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastOpenReq.WorkerID != 42 || mock.lastOpenReq.PropertyID != "P1" {
		t.Errorf("unexpected request: %+v", mock.lastOpenReq)
	}
	if !strings.Contains(out.String(), "Opened shift 1: worker 42 at P1 (2024-03-15 09:00)") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestShiftAdapter_OpenAlreadyOpen(t *testing.T) {
	adapter, mock, out := newTestShiftAdapter()
	conflict := &primary.Shift{ID: 7, WorkerID: 42, PropertyID: "P9", OpenedAt: testTime, Status: "open"}
	mock.openShiftFn = func(ctx context.Context, req primary.OpenShiftRequest) (*primary.OpenShiftResponse, error) {
		return nil, &primary.AlreadyOpenError{Shift: conflict}
	}

	err := adapter.Open(context.Background(), 42, "P1")

	var openErr *primary.AlreadyOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected AlreadyOpenError to stay matchable, got %v", err)
	}
	if !strings.Contains(err.Error(), "already checked in at P9") || !strings.Contains(err.Error(), "shift 7") {
		t.Errorf("expected user-facing text, got %q", err.Error())
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestShiftAdapter_OpenAlreadyOpenInConfiguredZone(t *testing.T) {
	mock := &mockShiftService{}
	adapter := NewShiftAdapter(mock, &bytes.Buffer{}, time.FixedZone("UTC+2", 2*60*60))
	mock.openShiftFn = func(ctx context.Context, req primary.OpenShiftRequest) (*primary.OpenShiftResponse, error) {
		return nil, &primary.AlreadyOpenError{Shift: &primary.Shift{ID: 7, WorkerID: 42, PropertyID: "P9", OpenedAt: testTime, Status: "open"}}
	}

	err := adapter.Open(context.Background(), 42, "P1")

	if err == nil || !strings.Contains(err.Error(), "since 2024-03-15 11:00") {
		t.Errorf("expected opening time in the adapter's zone, got %v", err)
	}
}

func TestShiftAdapter_CloseSuspicious(t *testing.T) {
	adapter, mock, out := newTestShiftAdapter()
	mock.closeShiftFn = func(ctx context.Context, req primary.CloseShiftRequest) (*primary.CloseShiftResponse, error) {
		s := &primary.Shift{ID: req.ShiftID, Status: "closed", DurationHours: 30}
		return &primary.CloseShiftResponse{Shift: s, DurationHours: 30, Suspicious: true}, nil
	}

	if err := adapter.Close(context.Background(), 3, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Closed shift 3: 30.00 hours") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if !strings.Contains(out.String(), "please verify") {
		t.Errorf("expected suspicious warning, got %q", out.String())
	}
}

func TestShiftAdapter_ShowOpenNone(t *testing.T) {
	adapter, _, out := newTestShiftAdapter()

	if err := adapter.ShowOpen(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Worker 5 has no open shift") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestShiftAdapter_Completed(t *testing.T) {
	adapter, mock, out := newTestShiftAdapter()
	mock.shifts = []*primary.Shift{
		{ID: 2, WorkerID: 1, PropertyID: "P1", OpenedAt: testTime, ClosedAt: testTime.Add(8 * time.Hour), DurationHours: 8, Status: "closed"},
	}

	if err := adapter.Completed(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastLimit != 5 {
		t.Errorf("expected limit 5, got %d", mock.lastLimit)
	}
	for _, want := range []string{"2024-03-15 17:00", "8.00", "closed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output %q", want, out.String())
		}
	}
}

func TestShiftAdapter_ListOpenEmpty(t *testing.T) {
	adapter, _, out := newTestShiftAdapter()

	if err := adapter.ListOpen(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No open shifts") {
		t.Errorf("unexpected output: %q", out.String())
	}
}
