package workflow

import "fmt"

// Status is a project's progress stage on the board.
type Status string

const (
	JustStarted     Status = "JUST_STARTED"
	TenPercent      Status = "TEN_PERCENT"
	ThirtyPercent   Status = "THIRTY_PERCENT"
	FiftyPercent    Status = "FIFTY_PERCENT"
	SeventyPercent  Status = "SEVENTY_PERCENT"
	AlmostCompleted Status = "ALMOST_COMPLETED"
	Completed       Status = "COMPLETED"
)

// stageInfo holds the presentation attributes of a stage. Progress and
// color are derived display values only; they carry no transition
// semantics.
type stageInfo struct {
	label    string
	progress int
	color    string
}

var stages = map[Status]stageInfo{
	JustStarted:     {"Just Started", 0, "#94a3b8"},
	TenPercent:      {"10% Done", 10, "#f87171"},
	ThirtyPercent:   {"30% Done", 30, "#fb923c"},
	FiftyPercent:    {"Halfway", 50, "#facc15"},
	SeventyPercent:  {"70% Done", 70, "#60a5fa"},
	AlmostCompleted: {"Almost Completed", 90, "#34d399"},
	Completed:       {"Completed", 100, "#10b981"},
}

// order defines the board column order, left to right.
var order = []Status{
	JustStarted,
	TenPercent,
	ThirtyPercent,
	FiftyPercent,
	SeventyPercent,
	AlmostCompleted,
	Completed,
}

// Initial is the status assigned to a newly created project.
func Initial() Status { return JustStarted }

// All returns every stage in board column order.
func All() []Status {
	out := make([]Status, len(order))
	copy(out, order)
	return out
}

// Valid reports whether s is one of the defined stages.
func (s Status) Valid() bool {
	_, ok := stages[s]
	return ok
}

// Label returns the display label for the stage.
func (s Status) Label() string { return stages[s].label }

// Progress returns the progress percentage used for progress bars.
func (s Status) Progress() int { return stages[s].progress }

// Color returns the presentation color for the stage.
func (s Status) Color() string { return stages[s].color }

// Parse converts a raw string into a Status.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown project status: %q", raw)
	}
	return s, nil
}

// CanTransition reports whether moving a project from one stage to
// another is legal. Progress re-assessment is a legitimate operator
// action, so backward moves are allowed; the only illegal transition is
// a no-op.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	return from != to
}
