package shifts

import "time"

// Shift statuses.
const (
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusMissed    = "missed"
)

// Shift represents a scheduled tour of duty on a property.
type Shift struct {
	ID             int64      `json:"id"`
	GuardID        int64      `json:"guard_id"`
	PropertyID     int64      `json:"property_id"`
	ScheduledStart time.Time  `json:"scheduled_start"`
	ScheduledEnd   time.Time  `json:"scheduled_end"`
	ClockInAt      *time.Time `json:"clock_in_at,omitempty"`
	ClockOutAt     *time.Time `json:"clock_out_at,omitempty"`
	ClockInLat     *float64   `json:"clock_in_lat,omitempty"`
	ClockInLng     *float64   `json:"clock_in_lng,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Scan records a checkpoint scan during a shift.
type Scan struct {
	ID           int64     `json:"id"`
	ShiftID      int64     `json:"shift_id"`
	CheckpointID int64     `json:"checkpoint_id"`
	ScannedAt    time.Time `json:"scanned_at"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
}
