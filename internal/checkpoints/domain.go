package checkpoints

import "time"

// Checkpoint represents a scannable patrol point on a property. Code is the
// QR/NFC payload and is unique per property.
type Checkpoint struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
