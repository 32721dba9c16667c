package phases

import (
	"errors"
	"fmt"
)

// ErrMissingPhase is returned by Run if a required phase function is nil.
var ErrMissingPhase = errors.New("required phase is not defined")

// CleanupError is returned when Teardown fails after Perform or Expect had already failed. If a
// panic was involved on either side, Run panics with the *CleanupError instead of returning it.
//
// Err is the teardown failure, which is the one the caller sees first. Cause is the earlier
// failure. errors.Is and errors.As match against both.
type CleanupError struct {
	Err   error
	Cause error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("%s (teardown ran after earlier failure: %s)", e.Err, e.Cause)
}

func (e *CleanupError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

// errGoexit stands in for the outcome of a phase that called runtime.Goexit, which is how
// testing.T.FailNow stops a test. Run only returns it if a phase panicked with nil and the
// runtime could not distinguish that from Goexit.
var errGoexit = errors.New("phase exited without returning (runtime.Goexit, e.g. t.FailNow)")

// PanicError holds the value a phase panicked with, when the panic has to be reported as an
// error or combined with another failure in a CleanupError.
type PanicError struct {
	Value interface{}
}

func (e PanicError) Error() string {
	return fmt.Sprintf("phase panicked: %+v", e.Value)
}
