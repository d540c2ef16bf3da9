package ldtest

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/app-test-harness/framework"

	"github.com/stretchr/testify/assert"
)

func TestConsoleTestLoggerWritesToConfiguredOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := ConsoleTestLogger{DebugOutputOnFailure: true, Out: &out, ErrOut: &errOut}
	id := TestID{"app tests", "bad"}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("first line\nsecond line"))
	logger.TestFinished(id, TestResult{TestID: id, Errors: []error{errors.New("x")}, Duration: time.Second},
		framework.CapturedOutput{{Message: "some detail"}})
	logger.TestSkipped(TestID{"app tests", "other"}, "not today")

	s := out.String()
	assert.Contains(t, s, "[app tests/bad]")
	assert.Contains(t, s, "  first line")
	assert.Contains(t, s, "  second line")
	assert.Contains(t, s, "FAILED: app tests/bad (1s)")
	assert.Contains(t, s, "DEBUG ")
	assert.Contains(t, s, "some detail")
	assert.Contains(t, s, "SKIPPED: app tests/other (not today)")

	assert.NoError(t, logger.EndLog(Results{Failures: []TestResult{{TestID: id}}}))
	assert.Contains(t, errOut.String(), "FAILED TESTS (1)")
	assert.Contains(t, errOut.String(), "* app tests/bad")
}

func TestConsoleTestLoggerHidesDebugOutputOnSuccessByDefault(t *testing.T) {
	var out bytes.Buffer
	logger := ConsoleTestLogger{DebugOutputOnFailure: true, Out: &out}
	id := TestID{"ok"}
	logger.TestFinished(id, TestResult{TestID: id}, framework.CapturedOutput{{Message: "quiet"}})
	assert.NotContains(t, out.String(), "quiet")

	assert.NoError(t, logger.EndLog(Results{}))
	assert.Contains(t, out.String(), "All tests passed")
}
