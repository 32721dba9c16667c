// Package phasetest runs phased test cases under the go test runner.
package phasetest

import (
	"context"

	"github.com/launchdarkly/go-phased-tests/phases"

	"github.com/stretchr/testify/require"
)

// TestingT is the part of *testing.T that Run uses.
type TestingT interface {
	require.TestingT
	Helper()
	Name() string
	Logf(format string, args ...interface{})
}

// Run runs the case and fails the test if it fails. The case's debug output goes to t.Logf, so
// it is shown for failed tests and with go test -v.
//
// If the case has no name, the test name is used.
func Run(t TestingT, c phases.Case) {
	t.Helper()
	RunContext(context.Background(), t, c)
}

// RunContext is like Run but passes ctx to every phase.
func RunContext(ctx context.Context, t TestingT, c phases.Case) {
	t.Helper()
	if c.Name == "" {
		c.Name = t.Name()
	}
	runner := phases.Runner{DebugLogger: testLogger{t}}
	err := runner.Run(ctx, c)
	require.NoError(t, err, "case %q failed", c.Name)
}

type testLogger struct {
	t TestingT
}

func (l testLogger) Printf(message string, args ...interface{}) {
	l.t.Helper()
	l.t.Logf(message, args...)
}
