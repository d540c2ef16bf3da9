package main

import (
	"fmt"
	"io"
	"log"

	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/apptests"
	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/ldtest"
	"github.com/launchdarkly/app-test-harness/sampleapp"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
)

func runSuite(params runParams, stdout, stderr io.Writer) (ldtest.Results, error) {
	fmt.Fprintf(stdout, "app-test-harness v%s\n", version())

	config, err := loadAppConfig(params.commonParams)
	if err != nil {
		return ldtest.Results{}, err
	}

	mainDebugLogger := framework.NullLogger()
	appLoggers := ldlog.NewDisabledLoggers()
	if params.debugAll {
		mainDebugLogger = log.New(stdout, "", log.LstdFlags)
		appLoggers = ldlog.NewDefaultLoggers()
		appLoggers.SetBaseLogger(mainDebugLogger)
		appLoggers.SetMinLevel(ldlog.Debug)
	}

	h, err := apptest.New(
		sampleapp.New,
		apptest.BaseConfig(config),
		apptest.ResultTimeout(params.timeout),
		apptest.Logger(mainDebugLogger),
		apptest.AppLoggers(appLoggers),
	)
	if err != nil {
		return ldtest.Results{}, err
	}

	capabilities := apptests.AllCapabilities()
	if params.noServer {
		capabilities = nil
	}

	var testLogger ldtest.TestLogger
	consoleLogger := ldtest.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
		Out:                  stdout,
		ErrOut:               stderr,
	}
	if params.jUnitFile == "" {
		testLogger = consoleLogger
	} else {
		properties := map[string]string{
			"app.name":        config.Name,
			"harness.version": version(),
			"result.timeout":  params.timeout.String(),
		}
		testLogger = &ldtest.MultiTestLogger{Loggers: []ldtest.TestLogger{
			consoleLogger,
			ldtest.NewJUnitTestLogger(params.jUnitFile, apptests.SuiteName, properties, params.filters),
		}}
	}

	suiteContext := apptests.SuiteContext{Harness: h, Port: params.port}
	results := apptests.RunSuite(suiteContext, params.filters, capabilities, testLogger, stdout)

	fmt.Fprintln(stdout)
	if err := testLogger.EndLog(results); err != nil {
		return results, fmt.Errorf("error writing log: %w", err)
	}
	return results, nil
}
