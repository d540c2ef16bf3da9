package apptests

import (
	"sort"

	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/framework/ldtest"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/require"
)

type routeCaseFile struct {
	Cases []routeCase `json:"cases"`
}

// routeCase is a request that goes through the router, and what the result should look like.
type routeCase struct {
	Name    string          `json:"name"`
	Request caseRequest     `json:"request"`
	Expect  caseExpectation `json:"expect"`
}

type caseRequest struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	JSON    ldvalue.Value     `json:"json"`
	Form    map[string]string `json:"form"`
	Session map[string]string `json:"session"`
}

type caseExpectation struct {
	NotFound     bool                   `json:"notFound"`
	Status       int                    `json:"status"`
	ContentType  string                 `json:"contentType"`
	Charset      string                 `json:"charset"`
	Body         ldvalue.OptionalString `json:"body"`
	BodyContains string                 `json:"bodyContains"`
	JSON         ldvalue.Value          `json:"json"`
	Headers      map[string]string      `json:"headers"`
	Session      map[string]string      `json:"session"`
	Flash        map[string]string      `json:"flash"`
	Cookies      map[string]string      `json:"cookies"`
}

func doRouteCaseTests(t *ldtest.T) {
	sources, err := LoadAllCaseFiles()
	require.NoError(t, err)
	for _, source := range sources {
		var file routeCaseFile
		require.NoError(t, source.ParseInto(&file))
		t.Run(source.TestName(), func(t *ldtest.T) {
			for _, c := range file.Cases {
				t.Run(c.Name, func(t *ldtest.T) { runRouteCase(t, c) })
			}
		})
	}
}

func runRouteCase(t *ldtest.T, c routeCase) {
	req, err := c.Request.build()
	require.NoError(t, err)
	withApplication(t, func(app *apptest.App) {
		maybeResult, err := app.RouteAndDispatch(req)
		require.NoError(t, err)
		if c.Expect.NotFound {
			require.False(t, maybeResult.IsDefined(), "expected no route for %s, got %s", req, maybeResult)
			return
		}
		require.True(t, maybeResult.IsDefined(), "no route for %s", req)
		m.In(t).Assert(maybeResult.Value(), c.Expect.matcher())
	})
}

func (r caseRequest) build() (apptest.FakeRequest, error) {
	req, err := apptest.NewRequest(r.Method, r.Path)
	if err != nil {
		return req, err
	}
	if r.JSON.IsDefined() {
		if req, err = req.WithJSONBody(r.JSON, req.Method()); err != nil {
			return req, err
		}
	}
	if r.Form != nil {
		req = req.WithFormURLEncodedBody(r.Form)
	}
	for name, value := range r.Headers {
		req = req.WithHeader(name, value)
	}
	if len(r.Session) > 0 {
		req = req.WithSession(r.Session)
	}
	return req, nil
}

func (e caseExpectation) matcher() m.Matcher {
	var matchers []m.Matcher
	if e.Status != 0 {
		matchers = append(matchers, apptest.HasStatus(e.Status))
	}
	if e.ContentType != "" {
		matchers = append(matchers, apptest.HasContentType(e.ContentType))
	}
	if e.Charset != "" {
		matchers = append(matchers, apptest.HasCharset(e.Charset))
	}
	if e.Body.IsDefined() {
		matchers = append(matchers, apptest.HasBodyString(e.Body.StringValue()))
	}
	if e.BodyContains != "" {
		matchers = append(matchers, apptest.BodyString().Should(m.StringContains(e.BodyContains)))
	}
	if e.JSON.IsDefined() {
		matchers = append(matchers, apptest.BodyJSON().Should(m.JSONStrEqual(e.JSON.JSONString())))
	}
	for _, name := range sortedKeys(e.Headers) {
		matchers = append(matchers, apptest.HasHeader(name, e.Headers[name]))
	}
	for _, key := range sortedKeys(e.Session) {
		matchers = append(matchers, apptest.HasSessionValue(key, e.Session[key]))
	}
	for _, key := range sortedKeys(e.Flash) {
		matchers = append(matchers, apptest.HasFlashValue(key, e.Flash[key]))
	}
	for _, name := range sortedKeys(e.Cookies) {
		matchers = append(matchers, apptest.HasCookieValue(name, e.Cookies[name]))
	}
	return m.AllOf(matchers...)
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
