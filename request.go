package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/helpers"
	"github.com/launchdarkly/app-test-harness/sampleapp"

	"github.com/TylerBrock/colorjson"
	"github.com/fatih/color"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"golang.org/x/term"
)

func sendRequest(params requestParams, out io.Writer) error {
	config, err := loadAppConfig(params.commonParams)
	if err != nil {
		return err
	}
	req, err := buildRequest(params)
	if err != nil {
		return err
	}

	var logger framework.Logger = framework.NullLogger()
	if params.debugAll {
		logger = log.New(out, "DEBUG ", log.LstdFlags)
	}
	h, err := apptest.New(
		sampleapp.New,
		apptest.BaseConfig(config),
		apptest.ResultTimeout(params.timeout),
		apptest.Logger(logger),
		apptest.AppLoggers(ldlog.NewDisabledLoggers()),
	)
	if err != nil {
		return err
	}

	var dispatchErr error
	err = h.WithApplication(nil, func(app *apptest.App) {
		maybeResult, err := app.RouteAndDispatch(req)
		if err != nil {
			dispatchErr = err
			return
		}
		if !maybeResult.IsDefined() {
			dispatchErr = fmt.Errorf("no route for %s", req)
			return
		}
		dispatchErr = printResult(out, maybeResult.Value(), isTerminal(out))
	})
	if err != nil {
		return err
	}
	return dispatchErr
}

func buildRequest(params requestParams) (apptest.FakeRequest, error) {
	req, err := apptest.NewRequest(params.method, params.path)
	if err != nil {
		return apptest.FakeRequest{}, err
	}
	for _, h := range params.headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return apptest.FakeRequest{}, err
		}
		req = req.WithHeader(name, value)
	}
	if params.json != "" {
		body, err := codec.ParseJSON([]byte(params.json))
		if err != nil {
			return apptest.FakeRequest{}, fmt.Errorf("invalid --json body: %w", err)
		}
		if req, err = req.WithJSONBody(body, req.Method()); err != nil {
			return apptest.FakeRequest{}, err
		}
	}
	return req, nil
}

func printResult(out io.Writer, result *apptest.Result, colorize bool) error {
	status, err := result.Status()
	if err != nil {
		return err
	}
	statusColor := color.New(color.FgGreen, color.Bold)
	switch {
	case status >= 400:
		statusColor = color.New(color.FgRed, color.Bold)
	case status >= 300:
		statusColor = color.New(color.FgYellow, color.Bold)
	}
	keyColor := color.New(color.FgCyan)
	if colorize {
		statusColor.EnableColor()
		keyColor.EnableColor()
	} else {
		statusColor.DisableColor()
		keyColor.DisableColor()
	}

	_, _ = statusColor.Fprintf(out, "%d", status)
	fmt.Fprintf(out, " (%s)\n", result.Action())

	headers, _ := result.Headers()
	if headers == nil {
		headers = make(http.Header)
	}
	if contentType, _ := result.Header("Content-Type"); contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	for _, name := range helpers.Sorted(names) {
		for _, value := range headers[name] {
			_, _ = keyColor.Fprintf(out, "%s", name)
			fmt.Fprintf(out, ": %s\n", value)
		}
	}
	session, _ := result.Session()
	printMap(out, keyColor, "Session", session)
	flash, _ := result.Flash()
	printMap(out, keyColor, "Flash", flash)
	cookies, _ := result.Cookies()
	for _, c := range cookies {
		_, _ = keyColor.Fprintf(out, "Set-Cookie")
		fmt.Fprintf(out, ": %s\n", c)
	}
	fmt.Fprintln(out)

	if body, err := result.BodyAsJSON(); err == nil {
		if colorize {
			f := colorjson.NewFormatter()
			f.Indent = 2
			if s, err := f.Marshal(body.AsArbitraryValue()); err == nil {
				fmt.Fprintln(out, string(s))
				return nil
			}
		}
		fmt.Fprintln(out, helpers.CanonicalizedJSONString(body))
		return nil
	}
	text, err := result.BodyAsString()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}

func printMap(out io.Writer, keyColor *color.Color, label string, values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	for _, k := range helpers.Sorted(keys) {
		_, _ = keyColor.Fprintf(out, "%s[%s]", label, k)
		fmt.Fprintf(out, ": %s\n", values[k])
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
