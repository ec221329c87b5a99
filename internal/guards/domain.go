package guards

import "time"

// Guard represents a guard profile. The baseline coordinates and approval
// flag are the only fields mutated outside of plain CRUD; all such writes go
// through the geofence and approval services.
type Guard struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`

	LoginLocationLat *float64 `json:"login_location_lat"`
	LoginLocationLng *float64 `json:"login_location_lng"`

	RequiresAdminApproval bool   `json:"requires_admin_approval"`
	ApprovalReason        string `json:"approval_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasBaseline reports whether a login baseline has been recorded.
func (g *Guard) HasBaseline() bool {
	return g != nil && g.LoginLocationLat != nil && g.LoginLocationLng != nil
}
