package pipeline

// State is a position in the per-event decision sequence.
type State int

const (
	Pending State = iota
	HeuristicRejected
	HeuristicPassed
	OracleRejected
	OracleAccepted
	Normalized
	Hidden
	Shown
	Skipped
)

var stateNames = [...]string{
	Pending:           "pending",
	HeuristicRejected: "heuristic_rejected",
	HeuristicPassed:   "heuristic_passed",
	OracleRejected:    "oracle_rejected",
	OracleAccepted:    "oracle_accepted",
	Normalized:        "normalized",
	Hidden:            "hidden",
	Shown:             "shown",
	Skipped:           "skipped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends the sequence for this run.
func (s State) Terminal() bool {
	return s == Hidden || s == Shown || s == Skipped
}
