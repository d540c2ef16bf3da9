package apptests

import (
	"github.com/launchdarkly/app-test-harness/apptest"
	"github.com/launchdarkly/app-test-harness/browser"
	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/framework"
	"github.com/launchdarkly/app-test-harness/framework/ldtest"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonTestValue() ldvalue.Value {
	return codec.ToJSON(map[string]any{"key1": "val1", "key2": 2, "key3": true})
}

func isHTMLPage(containing string) m.Matcher {
	return m.AllOf(
		apptest.HasStatus(200),
		apptest.HasContentType("text/html"),
		apptest.HasCharset("utf-8"),
		apptest.BodyString().Should(m.StringContains(containing)),
	)
}

func isJSONEcho(expected ldvalue.Value) m.Matcher {
	return m.AllOf(
		apptest.HasStatus(200),
		apptest.HasContentType("application/json"),
		apptest.BodyJSON().Should(m.JSONStrEqual(expected.JSONString())),
	)
}

func doRenderTemplateTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		content, err := app.RenderView("index.html", "Coco")
		require.NoError(t, err)
		assert.Equal(t, "text/html", content.ContentType)
		assert.Contains(t, content.String(), "Coco")
	})
}

func doCallIndexTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		result, err := app.DispatchAction(webapp.Ref("Application.index", "name", "Kiki"))
		require.NoError(t, err)
		m.In(t).Assert(result, isHTMLPage("Hello Kiki"))
	})
}

func doBadRouteTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		req, err := apptest.NewRequest("GET", "/xx/Kiki")
		require.NoError(t, err)
		maybeResult, err := app.RouteAndDispatch(req)
		require.NoError(t, err)
		assert.False(t, maybeResult.IsDefined(), "expected no route, got %s", maybeResult)
	})
}

func doRouteIndexTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		req, err := apptest.NewRequest("GET", "/Kiki")
		require.NoError(t, err)
		maybeResult, err := app.RouteAndDispatch(req)
		require.NoError(t, err)
		require.True(t, maybeResult.IsDefined(), "no route for %s", req)
		m.In(t).Assert(maybeResult.Value(), isHTMLPage("Hello Kiki"))
	})
}

func doInAppTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		req, err := apptest.NewRequest("GET", "/key")
		require.NoError(t, err)
		maybeResult, err := app.RouteAndDispatch(req)
		require.NoError(t, err)
		require.True(t, maybeResult.IsDefined(), "no route for %s", req)
		m.In(t).Assert(maybeResult.Value(), m.AllOf(
			apptest.HasStatus(200),
			apptest.HasContentType("text/plain"),
			apptest.HasCharset("utf-8"),
			apptest.BodyString().Should(m.StringContains("secret")),
		))
	})
}

func doInServerTest(t *ldtest.T) {
	t.RequireCapability(framework.CapabilityServer)
	t.RequireCapability(framework.CapabilityBrowser)

	sc := suiteContext(t)
	err := sc.Harness.WithServer(sc.Port, func(server *apptest.Server) {
		b, err := browser.New(browser.Logger(t.DebugLogger()))
		require.NoError(t, err)

		require.NoError(t, b.GoTo(server.URL()))
		texts := b.Find("#title").Texts()
		require.NotEmpty(t, texts)
		assert.Equal(t, "Hello Guest", texts[0])

		require.NoError(t, b.Find("a").Click())
		assert.Equal(t, server.URL()+"/Coco", b.URL())
		assert.Equal(t, "Hello Coco", b.Find("#title").Text(0))
	})
	require.NoError(t, err)
}

func doErrorsAsJSONTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		lang := "en"
		form := webapp.NewDynamicForm(nil, map[string][]webapp.ValidationError{
			"foo": {{Key: "foo", Message: webapp.MessageRequired}},
		})
		messages := app.Config().Messages
		jsonErrors := form.ErrorsAsJSON(messages, lang)
		assert.Equal(t, messages.Get(lang, webapp.MessageRequired),
			jsonErrors.GetByKey("foo").GetByIndex(0).StringValue())
	})
}

func doWithJSONBodyTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		base, err := apptest.NewRequest("POST", "/json")
		require.NoError(t, err)
		req, err := base.WithJSONBody(jsonTestValue())
		require.NoError(t, err)
		maybeResult, err := app.RouteAndDispatch(req)
		require.NoError(t, err)
		require.True(t, maybeResult.IsDefined(), "no route for %s", req)
		m.In(t).Assert(maybeResult.Value(), isJSONEcho(jsonTestValue()))
	})
}

func doWithJSONBodyAndMethodTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		req, err := apptest.DefaultRequest().WithJSONBody(jsonTestValue(), "DELETE")
		require.NoError(t, err)
		assert.Equal(t, "DELETE", req.Method())
		result, err := app.DispatchAction(webapp.Ref("Application.getIdenticalJson"), req)
		require.NoError(t, err)
		m.In(t).Assert(result, isJSONEcho(jsonTestValue()))
	})
}

func doAsyncResultTest(t *ldtest.T) {
	withApplication(t, func(app *apptest.App) {
		req, err := apptest.NewRequest("GET", "/async")
		require.NoError(t, err)
		maybeResult, err := app.Dispatch(req)
		require.NoError(t, err)
		require.True(t, maybeResult.IsDefined(), "no route for %s", req)
		result := maybeResult.Value()

		assert.True(t, result.IsAsync())
		_, err = result.Status()
		assert.Equal(t, apptest.ErrUnresolvedResult, err)

		require.NoError(t, result.Await(suiteContext(t).Harness.ResultTimeout()))
		m.In(t).Assert(result, m.AllOf(
			apptest.HasStatus(200),
			apptest.HasCharset("utf-8"),
			apptest.HasBodyString("success"),
			apptest.HasContentType("text/plain"),
			apptest.HasHeader("header_test", "header_val"),
			apptest.HasSessionValue("session_test", "session_val"),
			apptest.HasCookieValue("cookie_test", "cookie_val"),
			apptest.HasFlashValue("flash_test", "flash_val"),
		))
	})
}
