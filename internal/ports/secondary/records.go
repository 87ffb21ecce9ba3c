package secondary

import "time"

// WorkerRecord represents a worker as stored in persistence.
type WorkerRecord struct {
	ID           int64
	DisplayName  string
	RegisteredAt time.Time
}

// ShiftRecord represents a shift as stored in persistence.
type ShiftRecord struct {
	ID            int64
	WorkerID      int64
	PropertyID    string
	OpenedAt      time.Time
	ClosedAt      time.Time // zero while open
	DurationHours float64   // set at close
	Status        string    // "open" or "closed"
}

// RequestRecord represents a request as stored in persistence.
type RequestRecord struct {
	ID              int64
	WorkerID        int64
	PropertyID      string
	Category        string
	Description     string
	DeliveryNote    string
	Status          string    // "pending" or "completed"
	CreatedAt       time.Time
	CompletedAt     time.Time // zero while pending
	NotificationRef string
}
