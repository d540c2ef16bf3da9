package apptest

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/framework/helpers"
	"github.com/launchdarkly/app-test-harness/framework/opt"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"golang.org/x/text/encoding/htmlindex"
)

type resultState int

const (
	statePending resultState = iota
	stateResolved
	stateFailed
)

// Result is the outcome of dispatching a request. A Result for an action that deferred its work
// starts out pending, and stays that way until Await is called, even if the work has already
// finished. Once resolved, successfully or not, it never changes again.
//
// All of the accessors return ErrUnresolvedResult while the Result is pending, and the failure
// (a *DispatchError or *ResultTimeoutError) if it was resolved unsuccessfully.
type Result struct {
	action  string
	async   bool
	promise *webapp.Promise
	state   resultState
	value   webapp.Result
	err     error
	lock    sync.Mutex
}

func newResult(action string, p *webapp.Promise) *Result {
	r := &Result{action: action, promise: p, async: !p.IsImmediate()}
	if !r.async {
		r.settle()
	}
	return r
}

// Action returns the name of the action that produced the result.
func (r *Result) Action() string { return r.action }

// IsAsync returns true if the action deferred its work.
func (r *Result) IsAsync() bool { return r.async }

// IsPending returns true until Await has resolved an async result.
func (r *Result) IsPending() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.state == statePending
}

// Await waits up to the timeout for the result to complete, and returns the failure if the action
// failed or did not complete in time. A timeout of zero or less does not wait at all: the result
// is resolved only if the work has already finished. It may be called any number of times, from
// any goroutine.
func (r *Result) Await(timeout time.Duration) error {
	r.lock.Lock()
	if r.state != statePending {
		defer r.lock.Unlock()
		return r.err
	}
	r.lock.Unlock()

	completed := r.promise.IsDone()
	if !completed && timeout > 0 {
		// the deadline and completion can be ready at the same moment
		completed = helpers.TryReceive(r.promise.Done(), timeout).IsDefined() || r.promise.IsDone()
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.state != statePending {
		return r.err
	}
	if !completed {
		r.promise.Cancel()
		r.state = stateFailed
		r.err = &ResultTimeoutError{Action: r.action, Timeout: timeout}
		return r.err
	}
	r.settleLocked()
	return r.err
}

func (r *Result) settle() {
	r.lock.Lock()
	r.settleLocked()
	r.lock.Unlock()
}

func (r *Result) settleLocked() {
	value, err := r.promise.Value()
	if err != nil {
		r.state = stateFailed
		r.err = &DispatchError{Action: r.action, Cause: err}
		return
	}
	r.state = stateResolved
	r.value = value
}

func (r *Result) resolved() (webapp.Result, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	switch r.state {
	case statePending:
		return webapp.Result{}, ErrUnresolvedResult
	case stateFailed:
		return webapp.Result{}, r.err
	}
	return r.value, nil
}

func (r *Result) Status() (int, error) {
	v, err := r.resolved()
	return v.Status, err
}

// ContentType returns the media type of the body without parameters, such as "text/html".
func (r *Result) ContentType() (string, error) {
	v, err := r.resolved()
	return v.ContentType, err
}

func (r *Result) Charset() (string, error) {
	v, err := r.resolved()
	return v.Charset, err
}

func (r *Result) Body() ([]byte, error) {
	v, err := r.resolved()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), v.Body...), nil
}

// BodyAsString decodes the body using the result's charset. A result without a charset is
// assumed to be UTF-8.
func (r *Result) BodyAsString() (string, error) {
	v, err := r.resolved()
	if err != nil {
		return "", err
	}
	if v.Charset == "" {
		return string(v.Body), nil
	}
	enc, err := htmlindex.Get(v.Charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", v.Charset, err)
	}
	decoded, err := enc.NewDecoder().Bytes(v.Body)
	if err != nil {
		return "", fmt.Errorf("body is not valid %s: %w", v.Charset, err)
	}
	return string(decoded), nil
}

// BodyAsJSON parses the body as JSON. It returns a *NotJSONError if the content type is not a
// JSON type, or a *codec.MalformedJSONError if the body is not valid JSON.
func (r *Result) BodyAsJSON() (ldvalue.Value, error) {
	v, err := r.resolved()
	if err != nil {
		return ldvalue.Null(), err
	}
	if !codec.IsJSONContentType(v.ContentType) {
		return ldvalue.Null(), &NotJSONError{ContentType: v.ContentType}
	}
	return codec.ParseJSON(v.Body)
}

// Header returns the value of a response header, or "" if there is none. Content-Type is
// reported with its charset, as it would be sent.
func (r *Result) Header(name string) (string, error) {
	v, err := r.resolved()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(name, "Content-Type") && v.ContentType != "" {
		if v.Charset == "" {
			return v.ContentType, nil
		}
		return v.ContentType + "; charset=" + v.Charset, nil
	}
	return v.Header.Get(name), nil
}

// Headers returns a copy of all the response headers that the action set.
func (r *Result) Headers() (http.Header, error) {
	v, err := r.resolved()
	if err != nil {
		return nil, err
	}
	return v.Header.Clone(), nil
}

// Cookie returns the last cookie that the action set with that name.
func (r *Result) Cookie(name string) (opt.Maybe[*http.Cookie], error) {
	v, err := r.resolved()
	if err != nil {
		return opt.None[*http.Cookie](), err
	}
	for i := len(v.Cookies) - 1; i >= 0; i-- {
		if v.Cookies[i].Name == name {
			c := *v.Cookies[i]
			return opt.Some(&c), nil
		}
	}
	return opt.None[*http.Cookie](), nil
}

// Cookies returns all the cookies that the action set, not counting the session and flash
// cookies.
func (r *Result) Cookies() ([]*http.Cookie, error) {
	v, err := r.resolved()
	if err != nil {
		return nil, err
	}
	ret := make([]*http.Cookie, 0, len(v.Cookies))
	for _, c := range v.Cookies {
		cc := *c
		ret = append(ret, &cc)
	}
	return ret, nil
}

// Session returns the session as it is at the end of the request.
func (r *Result) Session() (map[string]string, error) {
	v, err := r.resolved()
	return copyMap(v.Session), err
}

// Flash returns the flash values that the action set for the next request.
func (r *Result) Flash() (map[string]string, error) {
	v, err := r.resolved()
	return copyMap(v.Flash), err
}

// RedirectLocation returns the Location header of a 3xx result.
func (r *Result) RedirectLocation() (opt.Maybe[string], error) {
	v, err := r.resolved()
	if err != nil {
		return opt.None[string](), err
	}
	if v.Status < 300 || v.Status > 399 || v.Header.Get("Location") == "" {
		return opt.None[string](), nil
	}
	return opt.Some(v.Header.Get("Location")), nil
}

func (r *Result) String() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	switch r.state {
	case statePending:
		return fmt.Sprintf("Result(%s, pending)", r.action)
	case stateFailed:
		return fmt.Sprintf("Result(%s, failed: %s)", r.action, r.err)
	}
	return fmt.Sprintf("Result(%s, %d %s)", r.action, r.value.Status, r.value.ContentType)
}
