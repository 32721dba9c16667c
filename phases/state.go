package phases

import "fmt"

// State is the position of a case within its lifecycle. A case only ever moves forward
// through these states.
type State int

const (
	NotStarted State = iota
	GivenRunning
	PerformRunning
	ExpectRunning
	TeardownRunning
	Done
)

var stateNames = map[State]string{
	NotStarted:      "not started",
	GivenRunning:    "given",
	PerformRunning:  "perform",
	ExpectRunning:   "expect",
	TeardownRunning: "teardown",
	Done:            "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}
