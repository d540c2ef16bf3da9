package apptest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/stretchr/testify/require"
)

// testApp builds a small application for exercising the harness. Actions:
//
//	GET  /hello/:name  text/plain "Hello <name>"
//	POST /echo         echoes a JSON body
//	GET  /later        async; waits for release, then sets header/session/cookie/flash
//	GET  /fail         returns an error
//	GET  /latin1       ISO-8859-1 text
//	GET  /go           redirects to /hello/there
type testApp struct {
	release chan struct{}
	stopped int
}

func newTestApp() *testApp {
	return &testApp{release: make(chan struct{})}
}

func (ta *testApp) factory(config webapp.Config) (*webapp.Application, error) {
	a := webapp.NewApplication(config)
	a.OnStop(func() error { ta.stopped++; return nil })
	actions := map[string]webapp.Action{
		"Test.hello": func(c *webapp.Context) (webapp.Result, error) {
			return webapp.OkText("Hello " + c.Param("name")), nil
		},
		"Test.echo": func(c *webapp.Context) (webapp.Result, error) {
			body, err := c.Body()
			if err != nil {
				return webapp.Result{}, err
			}
			if _, err := c.BodyAsJSON(); err != nil {
				return webapp.BadRequest(err.Error()), nil
			}
			return webapp.OkJSON(body).WithHeader("X-Method", c.Request().Method), nil
		},
		"Test.later": func(c *webapp.Context) (webapp.Result, error) {
			return c.Async(func(ctx context.Context) (webapp.Result, error) {
				select {
				case <-ta.release:
				case <-ctx.Done():
					return webapp.Result{}, ctx.Err()
				}
				c.Response().SetHeader("header_test", "header_val")
				c.Response().SetCookie(&http.Cookie{Name: "cookie_test", Value: "cookie_val"})
				c.Session().Put("session_test", "session_val")
				c.Flash().Put("flash_test", "flash_val")
				return webapp.OkText("success"), nil
			}), nil
		},
		"Test.fail": func(c *webapp.Context) (webapp.Result, error) {
			return webapp.Result{}, errors.New("deliberate failure")
		},
		"Test.latin1": func(c *webapp.Context) (webapp.Result, error) {
			r := webapp.OkText("")
			r.Charset = "iso-8859-1"
			r.Body = []byte{'c', 'a', 'f', 0xe9}
			return r, nil
		},
		"Test.redirect": func(c *webapp.Context) (webapp.Result, error) {
			path, err := c.Reverse(webapp.Ref("Test.hello", "name", "there"))
			if err != nil {
				return webapp.Result{}, err
			}
			return webapp.Redirect(path), nil
		},
		"Test.config": func(c *webapp.Context) (webapp.Result, error) {
			return webapp.OkText(c.Config().GetString("key", "secret")), nil
		},
		"Test.whoami": func(c *webapp.Context) (webapp.Result, error) {
			user, _ := c.Session().Get("user")
			notice, _ := c.Flash().Get("notice")
			return webapp.OkText(user + "/" + notice + "/" + c.Request().Header.Get(RequestIDHeader)), nil
		},
	}
	for name, action := range actions {
		if err := a.Action(name, action); err != nil {
			return nil, err
		}
	}
	for _, r := range []webapp.RouteDef{
		{Method: "GET", Pattern: "/hello/:name", Action: "Test.hello"},
		{Method: "POST", Pattern: "/echo", Action: "Test.echo"},
		{Method: "GET", Pattern: "/later", Action: "Test.later"},
		{Method: "GET", Pattern: "/fail", Action: "Test.fail"},
		{Method: "GET", Pattern: "/latin1", Action: "Test.latin1"},
		{Method: "GET", Pattern: "/go", Action: "Test.redirect"},
		{Method: "GET", Pattern: "/key", Action: "Test.config"},
		{Method: "GET", Pattern: "/whoami", Action: "Test.whoami"},
	} {
		if err := a.Route(r.Method, r.Pattern, r.Action); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (ta *testApp) harness(t *testing.T, options ...Option) *Harness {
	h, err := New(ta.factory, options...)
	require.NoError(t, err)
	return h
}

func mustRequest(t *testing.T, method, path string) FakeRequest {
	r, err := NewRequest(method, path)
	require.NoError(t, err)
	return r
}
