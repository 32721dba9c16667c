package phases

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Observer is notified as a case moves through its phases.
type Observer interface {
	PhaseStarted(name string, state State)
	PhaseFailed(name string, state State, err error)
	CaseFinished(name string, err error, debugOutput CapturedOutput)
}

type nullObserver struct{}

func (n nullObserver) PhaseStarted(name string, state State) {}

func (n nullObserver) PhaseFailed(name string, state State, err error) {}

func (n nullObserver) CaseFinished(name string, err error, debugOutput CapturedOutput) {}

var (
	failedColor = color.New(color.FgRed, color.Bold)
	passedColor = color.New(color.FgGreen)
	phaseColor  = color.New(color.Faint)
)

// ConsoleObserver prints the progress of each case to Out, or to standard output if Out is nil.
type ConsoleObserver struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleObserver) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleObserver) PhaseStarted(name string, state State) {
	if state == GivenRunning {
		fmt.Fprintf(c.out(), "[%s]\n", caseLabel(name))
	}
	phaseColor.Fprintf(c.out(), "  %s\n", state)
}

func (c *ConsoleObserver) PhaseFailed(name string, state State, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleObserver) CaseFinished(name string, err error, debugOutput CapturedOutput) {
	failed := err != nil
	if failed {
		failedColor.Fprintf(c.out(), "  FAILED: %s\n", caseLabel(name))
	} else {
		passedColor.Fprintf(c.out(), "  PASSED: %s\n", caseLabel(name))
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func caseLabel(name string) string {
	if name == "" {
		return "unnamed case"
	}
	return name
}
