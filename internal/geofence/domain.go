package geofence

// MsgNoBaseline signals the caller that no login baseline exists yet and one
// should be established via the baseline endpoint.
const MsgNoBaseline = "no baseline stored"

// CheckResult is the evaluator's outcome as it appears on the wire. Distance
// is rendered with two decimals; a violation is a normal response, not an
// error.
type CheckResult struct {
	WithinRange      bool   `json:"withinRange"`
	RequiresApproval bool   `json:"requiresApproval,omitempty"`
	Distance         string `json:"distance,omitempty"`
	Message          string `json:"message,omitempty"`
}

// Evaluation outcome labels used for metrics.
const (
	OutcomePass       = "pass"
	OutcomeViolate    = "violate"
	OutcomeFlagged    = "flagged"
	OutcomeNoBaseline = "no_baseline"
	OutcomeExempt     = "exempt"
)
