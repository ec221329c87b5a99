package overview

// Snapshot is the admin dashboard counters for one company, or for the whole
// platform when the caller is unscoped.
type Snapshot struct {
	Guards        int64 `json:"guards"`
	FlaggedGuards int64 `json:"flagged_guards"`
	ActiveShifts  int64 `json:"active_shifts"`
	OpenIncidents int64 `json:"open_incidents"`
	Properties    int64 `json:"properties"`
}
