package webapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/launchdarkly/app-test-harness/codec"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/text/language"
)

// Context is everything an action can see and change about the request it is handling.
type Context struct {
	ctx      context.Context
	app      *Application
	action   string
	request  *http.Request
	params   map[string]string
	session  *Scope
	flash    *Scope
	response *Response

	bodyOnce sync.Once
	body     []byte
	bodyErr  error
}

// Response collects headers and cookies that an action adds to its result.
type Response struct {
	header  http.Header
	cookies []*http.Cookie
	lock    sync.Mutex
}

func (r *Response) SetHeader(name, value string) {
	r.lock.Lock()
	r.header.Set(name, value)
	r.lock.Unlock()
}

func (r *Response) SetCookie(cookie *http.Cookie) {
	r.lock.Lock()
	r.cookies = append(r.cookies, cookie)
	r.lock.Unlock()
}

// DiscardCookie tells the client to delete a cookie.
func (r *Response) DiscardCookie(name string) {
	r.SetCookie(expiredCookie(name))
}

func newContext(
	ctx context.Context,
	app *Application,
	action string,
	req *http.Request,
	params map[string]string,
	session, flash map[string]string,
) *Context {
	return &Context{
		ctx:      ctx,
		app:      app,
		action:   action,
		request:  req,
		params:   params,
		session:  newScope(session),
		flash:    newScope(flash),
		response: &Response{header: make(http.Header)},
	}
}

// Context returns the context of this dispatch. It is cancelled when the application stops or
// when the caller abandons an async result.
func (c *Context) Context() context.Context { return c.ctx }

func (c *Context) Request() *http.Request { return c.request }

// Action returns the name of the action being run.
func (c *Context) Action() string { return c.action }

// Param returns a route parameter, or "" if there is none with that name.
func (c *Context) Param(name string) string { return c.params[name] }

// Query returns a query string parameter.
func (c *Context) Query(name string) string { return c.request.URL.Query().Get(name) }

func (c *Context) Session() *Scope { return c.session }

// Flash holds the flash data that arrived with the request. Any change to it is sent to the
// client for the next request; if it is not changed, the client's flash data is cleared.
func (c *Context) Flash() *Scope { return c.flash }

func (c *Context) Response() *Response { return c.response }

func (c *Context) Config() Config { return c.app.config }

func (c *Context) Loggers() ldlog.Loggers { return c.app.loggers }

// Lang returns the language code that best matches the request's Accept-Language header among
// the languages that have messages configured, or DefaultLanguage.
func (c *Context) Lang() string {
	tags, _, err := language.ParseAcceptLanguage(c.request.Header.Get("Accept-Language"))
	if err != nil {
		return DefaultLanguage
	}
	for _, tag := range tags {
		if _, ok := c.app.config.Messages[tag.String()]; ok {
			return tag.String()
		}
		base, _ := tag.Base()
		if _, ok := c.app.config.Messages[base.String()]; ok {
			return base.String()
		}
	}
	return DefaultLanguage
}

// Message returns a localized message for the request's language.
func (c *Context) Message(key string, args ...any) string {
	return c.app.config.Messages.Get(c.Lang(), key, args...)
}

// Body reads the whole request body. It can be called more than once.
func (c *Context) Body() ([]byte, error) {
	c.bodyOnce.Do(func() {
		if c.request.Body == nil {
			return
		}
		c.body, c.bodyErr = io.ReadAll(c.request.Body)
		_ = c.request.Body.Close()
	})
	return c.body, c.bodyErr
}

// BodyAsJSON parses the request body as JSON, regardless of its declared content type.
func (c *Context) BodyAsJSON() (ldvalue.Value, error) {
	body, err := c.Body()
	if err != nil {
		return ldvalue.Null(), err
	}
	return codec.ParseJSON(body)
}

// Form parses a form-encoded request body, or the query string if there is no body, into a
// DynamicForm.
func (c *Context) Form() (*DynamicForm, error) {
	body, err := c.Body()
	if err != nil {
		return nil, err
	}
	values := c.request.URL.Query()
	if len(body) != 0 {
		if values, err = url.ParseQuery(string(body)); err != nil {
			return nil, fmt.Errorf("malformed form data: %w", err)
		}
	}
	data := make(map[string]string, len(values))
	for k := range values {
		data[k] = values.Get(k)
	}
	return NewDynamicForm(data, nil), nil
}

// Render renders a view and returns it as a 200 result.
func (c *Context) Render(name string, data any) (Result, error) {
	content, err := c.app.templates.Render(name, data)
	if err != nil {
		return Result{}, err
	}
	return OkContent(content), nil
}

// Reverse returns the URL path that routes to the action.
func (c *Context) Reverse(ref ActionRef) (string, error) {
	return c.app.router.Reverse(ref)
}

// Async runs fn on its own goroutine and returns a result that completes when fn does. The
// session, flash, and response of this Context can still be changed from fn.
func (c *Context) Async(fn func(ctx context.Context) (Result, error)) Result {
	return Async(NewPromise(c.ctx, fn))
}

// finalize copies the session, flash, and response state of the Context into the result.
func (c *Context) finalize(r Result) Result {
	c.response.lock.Lock()
	header := c.response.header.Clone()
	cookies := append([]*http.Cookie(nil), c.response.cookies...)
	c.response.lock.Unlock()
	for k, vv := range r.Header {
		header[k] = append([]string(nil), vv...)
	}
	r.Header = header
	r.Cookies = append(cookies, r.Cookies...)
	r.Session = c.session.Values()
	r.SessionCleared = c.session.wasCleared()
	if c.flash.IsDirty() {
		r.Flash = c.flash.Values()
	} else {
		r.Flash = map[string]string{}
	}
	r.promise = nil
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	return r
}
