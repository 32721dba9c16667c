package phases

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used for debug output. *log.Logger satisfies it, and
// so does a *testing.T wrapper that calls Logf.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

// CapturedMessage is one line of a case's debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is everything written to a case's debug log, oldest first. Observers get it
// in CaseFinished.
type CapturedOutput []CapturedMessage

// Dump writes one timestamped line per message, each starting with prefix.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n", prefix, m.Time.Format(timestampFormat), m.Message)
	}
}

// CapturingLogger keeps every message in memory, optionally passing each one on to another
// Logger as well. It is safe for concurrent use, since a phase may log from goroutines it
// started.
type CapturingLogger struct {
	forward Logger
	output  CapturedOutput
	lock    sync.Mutex
}

func newCaseLogger(forward Logger) *CapturingLogger {
	return &CapturingLogger{forward: forward}
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	m := CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)}
	l.lock.Lock()
	l.output = append(l.output, m)
	l.lock.Unlock()
	if l.forward != nil {
		l.forward.Printf("%s", m.Message)
	}
}

// Output returns a copy of the messages captured so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.output...)
}

type debugLoggerKey struct{}

// DebugLogger returns the debug logger of the case that is currently running. Messages written
// to it show up in the case's captured output alongside the phase transitions, and are passed
// on to Runner.DebugLogger if there is one. Outside of Run it returns a NullLogger.
func DebugLogger(ctx context.Context) Logger {
	if l, ok := ctx.Value(debugLoggerKey{}).(*CapturingLogger); ok {
		return l
	}
	return NullLogger()
}

func withDebugLogger(ctx context.Context, l *CapturingLogger) context.Context {
	return context.WithValue(ctx, debugLoggerKey{}, l)
}
