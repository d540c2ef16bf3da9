package apptest

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/framework/helpers"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/google/uuid"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// RequestIDHeader carries the FakeRequest id, so that application log output can be related to
// the request that caused it.
const RequestIDHeader = "X-Request-Id"

var validMethods = []string{ //nolint:gochecknoglobals
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete,
	http.MethodPatch, http.MethodHead, http.MethodOptions,
}

// FakeRequest describes an HTTP request to dispatch in-process. It is a value type: every With
// method returns a modified copy and leaves the original unchanged.
type FakeRequest struct {
	id      string
	method  string
	path    string
	header  http.Header
	body    []byte
	cookies []*http.Cookie
	session map[string]string
	flash   map[string]string
}

// NewRequest creates a request. The method is case-insensitive.
func NewRequest(method, path string) (FakeRequest, error) {
	m, err := normalizeMethod(method)
	if err != nil {
		return FakeRequest{}, err
	}
	if path == "" {
		return FakeRequest{}, ErrEmptyPath
	}
	return FakeRequest{id: uuid.NewString(), method: m, path: path, header: make(http.Header)}, nil
}

// DefaultRequest is a GET request for "/", used when an action is called without a request.
func DefaultRequest() FakeRequest {
	r, _ := NewRequest(http.MethodGet, "/")
	return r
}

func normalizeMethod(method string) (string, error) {
	m := strings.ToUpper(method)
	if !helpers.SliceContains(m, validMethods) {
		return "", &InvalidMethodError{Method: method}
	}
	return m, nil
}

func (r FakeRequest) ID() string { return r.id }

func (r FakeRequest) Method() string { return r.method }

func (r FakeRequest) Path() string { return r.path }

// Header returns a copy of the request headers.
func (r FakeRequest) Header() http.Header { return r.header.Clone() }

func (r FakeRequest) Body() []byte { return append([]byte(nil), r.body...) }

func (r FakeRequest) copy() FakeRequest {
	ret := r
	ret.header = r.header.Clone()
	if ret.header == nil {
		ret.header = make(http.Header)
	}
	ret.body = append([]byte(nil), r.body...)
	ret.cookies = append([]*http.Cookie(nil), r.cookies...)
	ret.session = copyMap(r.session)
	ret.flash = copyMap(r.flash)
	return ret
}

// WithMethod returns a copy of the request with a different method.
func (r FakeRequest) WithMethod(method string) (FakeRequest, error) {
	m, err := normalizeMethod(method)
	if err != nil {
		return FakeRequest{}, err
	}
	ret := r.copy()
	ret.method = m
	return ret, nil
}

// WithJSONBody returns a copy of the request with a JSON body and an application/json content
// type. The method becomes the optional method argument, or POST if there is none.
func (r FakeRequest) WithJSONBody(value ldvalue.Value, method ...string) (FakeRequest, error) {
	m := http.MethodPost
	if len(method) > 0 {
		var err error
		if m, err = normalizeMethod(method[0]); err != nil {
			return FakeRequest{}, err
		}
	}
	ret := r.copy()
	ret.method = m
	ret.body = codec.Serialize(value)
	ret.header.Set("Content-Type", codec.JSONContentType)
	return ret, nil
}

// WithTextBody returns a copy of the request with a text/plain body.
func (r FakeRequest) WithTextBody(text string) FakeRequest {
	ret := r.copy()
	ret.body = []byte(text)
	ret.header.Set("Content-Type", "text/plain; charset=utf-8")
	return ret
}

// WithFormURLEncodedBody returns a copy of the request with a form body.
func (r FakeRequest) WithFormURLEncodedBody(values map[string]string) FakeRequest {
	form := make(url.Values, len(values))
	for k, v := range values {
		form.Set(k, v)
	}
	ret := r.copy()
	ret.body = []byte(form.Encode())
	ret.header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ret
}

// WithHeader returns a copy of the request with a header set, replacing any previous value.
func (r FakeRequest) WithHeader(name, value string) FakeRequest {
	ret := r.copy()
	ret.header.Set(name, value)
	return ret
}

// WithCookies returns a copy of the request with additional cookies.
func (r FakeRequest) WithCookies(cookies ...*http.Cookie) FakeRequest {
	ret := r.copy()
	for _, c := range cookies {
		cc := *c
		ret.cookies = append(ret.cookies, &cc)
	}
	return ret
}

// WithSession returns a copy of the request with session values added. They are sent in the
// application's signed session cookie.
func (r FakeRequest) WithSession(values map[string]string) FakeRequest {
	ret := r.copy()
	ret.session = mergeMaps(ret.session, values)
	return ret
}

// WithFlash returns a copy of the request with flash values added.
func (r FakeRequest) WithFlash(values map[string]string) FakeRequest {
	ret := r.copy()
	ret.flash = mergeMaps(ret.flash, values)
	return ret
}

// HTTPRequest builds the *http.Request for this FakeRequest. Session and flash values are
// encoded into cookies with the application's SessionCodec.
func (r FakeRequest) HTTPRequest(ctx context.Context, sessions *webapp.SessionCodec) (*http.Request, error) {
	if r.method == "" {
		return nil, &InvalidMethodError{}
	}
	if r.path == "" {
		return nil, ErrEmptyPath
	}
	target := r.path
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	req, err := http.NewRequestWithContext(ctx, r.method, "http://localhost"+target, bytes.NewReader(r.body))
	if err != nil {
		return nil, err
	}
	req.Header = r.header.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if r.id != "" {
		req.Header.Set(RequestIDHeader, r.id)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	if len(r.session) != 0 {
		c, err := sessions.SessionCookie(r.session)
		if err != nil {
			return nil, err
		}
		req.AddCookie(c)
	}
	if len(r.flash) != 0 {
		req.AddCookie(sessions.FlashCookie(r.flash))
	}
	return req, nil
}

func (r FakeRequest) String() string {
	return r.method + " " + r.path
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	ret := make(map[string]string, len(m))
	for k, v := range m {
		ret[k] = v
	}
	return ret
}

func mergeMaps(base, more map[string]string) map[string]string {
	ret := make(map[string]string, len(base)+len(more))
	for k, v := range base {
		ret[k] = v
	}
	for k, v := range more {
		ret[k] = v
	}
	return ret
}
