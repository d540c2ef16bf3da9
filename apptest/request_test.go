package apptest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestKeepsMethodAndPath(t *testing.T) {
	for _, method := range []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"} {
		for _, path := range []string{"/", "/Kiki", "/xx/Kiki", "/search?q=x"} {
			r, err := NewRequest(method, path)
			require.NoError(t, err)
			assert.Equal(t, method, r.Method())
			assert.Equal(t, path, r.Path())
			assert.NotEmpty(t, r.ID())
		}
	}
}

func TestNewRequestNormalizesMethodCase(t *testing.T) {
	r, err := NewRequest("delete", "/x")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", r.Method())
}

func TestNewRequestErrors(t *testing.T) {
	_, err := NewRequest("FETCH", "/")
	var ime *InvalidMethodError
	require.True(t, errors.As(err, &ime))
	assert.Equal(t, "FETCH", ime.Method)

	_, err = NewRequest("", "/")
	assert.True(t, errors.As(err, &ime))

	_, err = NewRequest("GET", "")
	assert.Equal(t, ErrEmptyPath, err)
}

func TestDefaultRequest(t *testing.T) {
	r := DefaultRequest()
	assert.Equal(t, "GET", r.Method())
	assert.Equal(t, "/", r.Path())
}

func TestEachRequestHasItsOwnID(t *testing.T) {
	assert.NotEqual(t, DefaultRequest().ID(), DefaultRequest().ID())
}

func TestWithJSONBody(t *testing.T) {
	value := ldvalue.ObjectBuild().Set("key1", ldvalue.String("val1")).Build()
	base := mustRequest(t, "GET", "/json")

	r, err := base.WithJSONBody(value)
	require.NoError(t, err)
	assert.Equal(t, "POST", r.Method())
	assert.Equal(t, codec.JSONContentType, r.Header().Get("Content-Type"))
	assert.Equal(t, `{"key1":"val1"}`, string(r.Body()))

	r, err = base.WithJSONBody(value, "delete")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", r.Method())

	_, err = base.WithJSONBody(value, "BREW")
	var ime *InvalidMethodError
	assert.True(t, errors.As(err, &ime))
}

func TestBuildersDoNotModifyOriginal(t *testing.T) {
	base := mustRequest(t, "GET", "/x")
	_, _ = base.WithJSONBody(ldvalue.Bool(true))
	_ = base.WithHeader("X-A", "1")
	_ = base.WithTextBody("text")
	_ = base.WithCookies(&http.Cookie{Name: "c", Value: "v"})
	_ = base.WithSession(map[string]string{"a": "b"})
	_ = base.WithFlash(map[string]string{"a": "b"})
	_, _ = base.WithMethod("PUT")

	assert.Equal(t, "GET", base.Method())
	assert.Empty(t, base.Header())
	assert.Empty(t, base.Body())
	assert.Empty(t, base.cookies)
	assert.Empty(t, base.session)
	assert.Empty(t, base.flash)

	h := base.Header()
	h.Set("X-B", "2")
	assert.Empty(t, base.Header(), "Header should return a copy")
}

func TestWithMethod(t *testing.T) {
	r, err := DefaultRequest().WithMethod("patch")
	require.NoError(t, err)
	assert.Equal(t, "PATCH", r.Method())

	_, err = DefaultRequest().WithMethod("nope")
	assert.Error(t, err)
}

func TestWithFormURLEncodedBody(t *testing.T) {
	r := DefaultRequest().WithFormURLEncodedBody(map[string]string{"a": "1 2"})
	assert.Equal(t, "a=1+2", string(r.Body()))
	assert.Equal(t, "application/x-www-form-urlencoded", r.Header().Get("Content-Type"))
}

func TestHTTPRequest(t *testing.T) {
	sessions := webapp.NewSessionCodec(webapp.DefaultConfig())
	r := mustRequest(t, "PUT", "/things/1?x=y").
		WithTextBody("hello").
		WithHeader("X-Custom", "yes").
		WithCookies(&http.Cookie{Name: "c", Value: "v"}).
		WithSession(map[string]string{"user": "kiki"}).
		WithFlash(map[string]string{"notice": "hi"})

	req, err := r.HTTPRequest(context.Background(), sessions)
	require.NoError(t, err)
	assert.Equal(t, "PUT", req.Method)
	assert.Equal(t, "/things/1", req.URL.Path)
	assert.Equal(t, "y", req.URL.Query().Get("x"))
	assert.Equal(t, "yes", req.Header.Get("X-Custom"))
	assert.Equal(t, r.ID(), req.Header.Get(RequestIDHeader))
	body, _ := io.ReadAll(req.Body)
	assert.Equal(t, "hello", string(body))

	c, err := req.Cookie("c")
	require.NoError(t, err)
	assert.Equal(t, "v", c.Value)

	session, flash, err := sessions.ReadRequest(req)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "kiki"}, session)
	assert.Equal(t, map[string]string{"notice": "hi"}, flash)
}

func TestHTTPRequestRejectsZeroValue(t *testing.T) {
	_, err := FakeRequest{}.HTTPRequest(context.Background(), nil)
	assert.Error(t, err)
}
