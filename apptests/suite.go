// Package apptests is the integration suite that exercises the harness against the sample
// application. It runs under the ldtest framework, so that it can be driven from the command line
// with filters and JUnit output as well as from go test.
package apptests

import (
	"io"

	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/ldtest"
)

// SuiteName is the name of the top-level test scope, and of the JUnit test suite.
const SuiteName = "app tests"

// SuiteContext is the ldtest context value that the tests use to find the harness.
type SuiteContext struct {
	Harness *apptest.Harness

	// Port is where "in server" tests listen. 0 means any free port.
	Port int
}

// AllCapabilities lists the capabilities that some tests in the suite require.
func AllCapabilities() framework.Capabilities {
	return framework.Capabilities{framework.CapabilityServer, framework.CapabilityBrowser}
}

// RunSuite runs every test in the suite. If out is not nil, a description of the filters and
// of any missing capabilities is written to it first.
func RunSuite(
	context SuiteContext,
	filters ldtest.RegexFilters,
	capabilities framework.Capabilities,
	testLogger ldtest.TestLogger,
	out io.Writer,
) ldtest.Results {
	if out != nil {
		filters.Describe(out, capabilities, AllCapabilities())
	}
	config := ldtest.TestConfiguration{
		Filter:       filters.AsFilter(),
		Capabilities: capabilities,
		TestLogger:   testLogger,
		Context:      context,
	}
	return ldtest.Run(config, func(t *ldtest.T) {
		t.Run(SuiteName, func(t *ldtest.T) {
			t.Run("render template", doRenderTemplateTest)
			t.Run("call index", doCallIndexTest)
			t.Run("bad route", doBadRouteTest)
			t.Run("route index", doRouteIndexTest)
			t.Run("in app", doInAppTest)
			t.Run("in server", doInServerTest)
			t.Run("errors as JSON", doErrorsAsJSONTest)
			t.Run("with JSON body", doWithJSONBodyTest)
			t.Run("with JSON body and method", doWithJSONBodyAndMethodTest)
			t.Run("async result", doAsyncResultTest)
			t.Run("route cases", doRouteCaseTests)
		})
	})
}

func suiteContext(t *ldtest.T) SuiteContext {
	return t.Context().(SuiteContext)
}

// withApplication runs the block in a fresh application instance, failing the test if the
// application cannot be started or stopped.
func withApplication(t *ldtest.T, block func(*apptest.App)) {
	if err := suiteContext(t).Harness.WithApplication(nil, block); err != nil {
		t.Errorf("application error: %s", err)
	}
}
