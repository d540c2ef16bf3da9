package ldtest

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"
)

// TestConfiguration contains options for the entire test run.
type TestConfiguration struct {
	// Filter is an optional function for determining which tests to run based on their names.
	Filter Filter

	// TestLogger receives status information about each test.
	TestLogger TestLogger

	// Context is an optional value of any type defined by the application which can be accessed
	// from tests. The application suite uses it to pass the harness to every test.
	Context interface{}

	// Capabilities are checked by T.RequireCapability. A test that requires a capability that is
	// not in this list is skipped.
	Capabilities framework.Capabilities
}

// run is the state shared by every scope of one call to Run.
type run struct {
	config  TestConfiguration
	results Results
}

func (r *run) record(result TestResult) {
	if len(result.Errors) != 0 {
		if result.NonCritical {
			r.results.NonCriticalFailures = append(r.results.NonCriticalFailures, result)
		} else {
			r.results.Failures = append(r.results.Failures, result)
		}
	}
	r.results.Tests = append(r.results.Tests, result)
}

// T represents a test scope. It is very similar to Go's testing.T type.
type T struct {
	run         *run
	id          TestID
	debugLogger framework.CapturingLogger
	nonCritical string
	failed      bool
	skipped     bool
	skipReason  string
	cleanups    []func()
	errors      []error
	helperFns   []string
}

// Run starts a top-level test scope and returns the results of it and all of its subtests.
func Run(config TestConfiguration, action func(*T)) Results {
	if config.TestLogger == nil {
		config.TestLogger = nullTestLogger{}
	}
	r := &run{config: config}
	t := &T{run: r}
	t.execute(action)
	return r.results
}

// execute runs the action in this scope. Cleanups run first when the action exits, however it
// exits, and the result is recorded after that.
func (t *T) execute(action func(*T)) (result TestResult) {
	started := time.Now()
	defer func() {
		result = t.finish(started)
	}()
	defer t.runCleanups()
	defer func() {
		if r := recover(); r != nil {
			t.recovered(r)
		}
	}()
	action(t)
	return
}

func (t *T) recovered(r interface{}) {
	if t.skipped {
		return
	}
	t.failed = true
	if _, ok := r.(*T); ok {
		// FailNow; the failure has normally been reported already
		if len(t.errors) == 0 {
			t.addError(errors.New("test failed with no failure message"))
		}
		return
	}
	t.addError(fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack())))
}

func (t *T) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
}

func (t *T) finish(started time.Time) TestResult {
	result := TestResult{
		TestID:   t.id,
		Errors:   t.errors,
		Duration: time.Since(started),
	}
	if t.failed && t.nonCritical != "" {
		result.NonCritical = true
		result.Explanation = t.nonCritical
	}
	if !t.skipped {
		t.run.record(result)
	}
	return result
}

func (t *T) addError(err error) {
	t.errors = append(t.errors, err)
	t.run.config.TestLogger.TestError(t.id, err)
}

// ID returns the full name of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run runs a subtest in its own scope. It is equivalent to Go's testing.T.Run, except that the
// subtest always runs synchronously. A subtest that does not match the configured filter is
// reported as skipped without running.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	logger := t.run.config.TestLogger

	logger.TestStarted(id)
	if t.run.config.Filter != nil && !t.run.config.Filter.Match(id) {
		logger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	sub := &T{id: id, run: t.run}
	t.debugLogger.AddChildLogger(&sub.debugLogger) // see comments on DebugLogger
	result := sub.execute(action)
	t.debugLogger.RemoveChildLogger(&sub.debugLogger)
	if sub.skipped {
		logger.TestSkipped(id, sub.skipReason)
	} else {
		logger.TestFinished(id, result, sub.debugLogger.Output())
	}
}

// NonCritical indicates that if this test fails, we would like to know about it but we're willing to
// live with it. It will be shown in the output as a non-critical failure, accompanied by the
// explanation that is specified here. Non-critical failures do not cause the command-line runner to
// return a non-zero exit code.
func (t *T) NonCritical(explanation string) {
	t.nonCritical = explanation
}

// Errorf reports a test failure. It is equivalent to Go's testing.T.Errorf. It does not cause the test
// to terminate, but adds the failure message to the output and marks the test as failed.
//
// You will rarely use this method directly; it is part of this type's implementation of the base
// interfaces testing.T and assert.TestingT, allowing it to be called from assertion helpers.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	t.addError(transformError(fmt.Errorf(format, args...), getStacktrace(false, t.helperFns)))
}

// FailNow causes the test to immediately terminate and be marked as failed.
func (t *T) FailNow() {
	panic(t)
}

// Skip causes the test to immediately terminate and be marked as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is equivalent to Skip but provides a message.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug writes a message to the output for this test scope.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger instance for writing output for this test scope.
//
// The output that is captured for a test will be passed to TestLogger.TestFinished at the end of
// the test. The test runner can choose whether to display this or not based on command-line options.
//
// When a test has subtests (created with t.Run), the logger for a subtest starts out with a copy of
// any output that was already logged for the parent test. During the lifetime of the subtest, any
// further output that is sent to the parent test's logger will go to the child test's logger
// instead, so that output from something the parent scope manages, such as a listening server,
// shows up with the subtest that caused it.
func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a cleanup function which is guaranteed to be called when this test scope
// exits for any reason. Unlike a Go defer statement, Defer can be used from within helper
// functions.
func (t *T) Defer(cleanupFn func()) {
	t.cleanups = append(t.cleanups, cleanupFn)
}

// Context returns the application-defined context value, if any, that was specified in the
// TestConfiguration.
func (t *T) Context() interface{} {
	return t.run.config.Context
}

// Capabilities returns the capabilities configured for this test run.
func (t *T) Capabilities() framework.Capabilities {
	return append(framework.Capabilities(nil), t.run.config.Capabilities...)
}

// RequireCapability causes the test to be skipped if the run does not have the capability.
func (t *T) RequireCapability(name string) {
	if !t.Capabilities().Has(name) {
		t.SkipWithReason(fmt.Sprintf("this test run does not have capability %q", name))
	}
}

// Helper marks the function that calls it as a test helper that shouldn't appear in stacktraces.
// Equivalent to Go's testing.T.Helper().
func (t *T) Helper() {
	pc, _, _, ok := runtime.Caller(1) // 0 is Helper() itself, 1 is who called it
	if !ok {
		return
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return
	}
	t.helperFns = append(t.helperFns, f.Name())
}
