package phases

import (
	"context"
	"fmt"
)

// Case describes a single test case. Given and Expect are required; Perform and Teardown may
// be nil.
//
// Each phase is an ordinary blocking function. If it needs to wait for something asynchronous,
// it should do so before returning; the next phase does not start until the previous one has
// returned.
type Case struct {
	// Name identifies the case in debug output and observer callbacks. It is optional.
	Name string

	// Given creates the preconditions for the test. Returning a nil Record is the same as
	// returning an empty one. If Given fails, no other phase runs, not even Teardown.
	Given func(ctx context.Context) (Record, error)

	// Perform does the thing being tested, using a copy of the Record from Given. Returning a
	// nil Record is the same as returning an empty one.
	Perform func(ctx context.Context, setup Record) (Record, error)

	// Expect makes assertions against the merged Given and Perform records. Keys from Perform
	// take precedence.
	Expect func(ctx context.Context, c Record) error

	// Teardown releases whatever Given acquired. It receives the same merged Record as Expect,
	// except that if Perform did not complete, the Perform part is empty. It runs whenever
	// Given succeeded.
	Teardown func(ctx context.Context, c Record) error
}

func (c Case) validate() error {
	if c.Given == nil {
		return fmt.Errorf("%w: Given", ErrMissingPhase)
	}
	if c.Expect == nil {
		return fmt.Errorf("%w: Expect", ErrMissingPhase)
	}
	return nil
}

// Runner runs cases with optional debug logging and progress reporting. The zero value is
// ready to use, and a Runner can be used for any number of concurrent Run calls.
type Runner struct {
	// DebugLogger, if set, receives every debug message as it is written. The messages are
	// captured for the Observer either way.
	DebugLogger Logger

	// Observer, if set, is told about each phase transition and the final outcome.
	Observer Observer
}

// Run runs a case with a zero-value Runner. See Runner.Run.
func Run(ctx context.Context, c Case) error {
	return Runner{}.Run(ctx, c)
}

// Run calls the phases of the case in order: Given, Perform, Expect, Teardown.
//
// The return value is nil if every phase succeeded. Otherwise it is the error that the failing
// phase returned, exactly as returned. The one exception is when Teardown fails after Perform
// or Expect already failed: then both errors are returned together as a *CleanupError.
//
// If Perform or Expect panics, or calls runtime.Goexit as testing.T.FailNow does, Teardown
// still runs and the panic or Goexit then continues on its way. A panic is re-raised with its
// original value, unless Teardown failed as well: then the panic value is a *CleanupError
// whose Cause is a PanicError holding the original value. The same applies when Teardown
// panics after an earlier failure. A teardown error that follows a Goexit cannot be returned
// and only reaches the debug logger and the observer.
//
// ctx is passed to every phase, and phases can get the case's debug logger from it with
// DebugLogger. Run itself never cancels it or waits on it.
func (r Runner) Run(ctx context.Context, c Case) error {
	if err := c.validate(); err != nil {
		return err
	}
	cr := r.newCaseRun(c)
	return cr.run(withDebugLogger(ctx, cr.logger))
}

// caseRun holds the state of one Run call. It is never shared between calls.
type caseRun struct {
	c             Case
	state         State
	setup         Record
	result        Record
	setupDone     bool
	teardownPanic interface{}
	logger        *CapturingLogger
	observer      Observer
}

func (r Runner) newCaseRun(c Case) *caseRun {
	cr := &caseRun{
		c:        c,
		state:    NotStarted,
		result:   Record{},
		logger:   newCaseLogger(r.DebugLogger),
		observer: r.Observer,
	}
	if cr.observer == nil {
		cr.observer = nullObserver{}
	}
	return cr
}

func (cr *caseRun) run(ctx context.Context) (err error) {
	completed := false
	defer func() {
		p := recover()
		outcome := err
		switch {
		case p != nil:
			outcome = PanicError{Value: p}
			cr.failed(outcome)
		case !completed:
			// Either runtime.Goexit, which carries on after we return, or a nil panic that
			// recover could not tell apart from it. The latter must not look like a pass.
			outcome = errGoexit
			cr.failed(outcome)
		}

		if cr.setupDone && cr.c.Teardown != nil {
			if terr := cr.teardown(ctx); terr != nil {
				if outcome == nil {
					outcome = terr
				} else {
					outcome = &CleanupError{Err: terr, Cause: outcome}
				}
			}
		}
		if p == nil {
			err = outcome
		}

		cr.finish(outcome)
		if p == nil && cr.teardownPanic == nil {
			return
		}
		if cleanupErr, ok := outcome.(*CleanupError); ok {
			panic(cleanupErr)
		}
		if cr.teardownPanic != nil {
			panic(cr.teardownPanic)
		}
		panic(p)
	}()

	err = cr.runPhases(ctx)
	completed = true
	return err
}

func (cr *caseRun) runPhases(ctx context.Context) error {
	cr.enter(GivenRunning, nil)
	setup, err := cr.c.Given(ctx)
	if err != nil {
		cr.failed(err)
		return err
	}
	cr.setup = Merge(setup)
	cr.setupDone = true

	if cr.c.Perform != nil {
		cr.enter(PerformRunning, cr.setup)
		result, err := cr.c.Perform(ctx, Merge(cr.setup))
		if err != nil {
			cr.failed(err)
			return err
		}
		cr.result = Merge(result)
	}

	merged := Merge(cr.setup, cr.result)
	cr.enter(ExpectRunning, merged)
	if err := cr.c.Expect(ctx, merged); err != nil {
		cr.failed(err)
		return err
	}
	return nil
}

func (cr *caseRun) teardown(ctx context.Context) (err error) {
	merged := Merge(cr.setup, cr.result)
	cr.enter(TeardownRunning, merged)
	defer func() {
		if p := recover(); p != nil {
			cr.teardownPanic = p
			err = PanicError{Value: p}
		}
		if err != nil {
			cr.failed(err)
		}
	}()
	return cr.c.Teardown(ctx, merged)
}

func (cr *caseRun) enter(state State, input Record) {
	cr.state = state
	if input == nil {
		cr.logger.Printf("starting %s", state)
	} else {
		cr.logger.Printf("starting %s with %s", state, input)
	}
	cr.observer.PhaseStarted(cr.c.Name, state)
}

func (cr *caseRun) failed(err error) {
	cr.logger.Printf("%s failed: %s", cr.state, err)
	cr.observer.PhaseFailed(cr.c.Name, cr.state, err)
}

func (cr *caseRun) finish(outcome error) {
	cr.state = Done
	if outcome == nil {
		cr.logger.Printf("finished successfully")
	} else {
		cr.logger.Printf("finished with failure: %s", outcome)
	}
	cr.observer.CaseFinished(cr.c.Name, outcome, cr.logger.Output())
}
