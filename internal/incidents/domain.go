package incidents

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for an incident report.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Status values. Reports move open -> reviewed -> closed; reopening a closed
// report is not allowed.
const (
	StatusOpen     = "open"
	StatusReviewed = "reviewed"
	StatusClosed   = "closed"
)

// Incident is a report filed by a guard during (or outside) a shift.
// PhotoKeys holds object-store keys; the images themselves live elsewhere.
type Incident struct {
	ID          uuid.UUID `json:"id"`
	ShiftID     *int64    `json:"shift_id,omitempty"`
	GuardID     int64     `json:"guard_id"`
	PropertyID  int64     `json:"property_id"`
	Severity    string    `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PhotoKeys   []string  `json:"photo_keys,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// CanTransition reports whether a report may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusReviewed || to == StatusClosed
	case StatusReviewed:
		return to == StatusClosed
	default:
		return false
	}
}
