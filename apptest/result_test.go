package apptest

import (
	"errors"
	"net/http"
	"testing"

	"github.com/launchdarkly/app-test-harness/codec"
	"github.com/launchdarkly/app-test-harness/webapp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolvedResult(r webapp.Result) *Result {
	return newResult("Test.fixed", webapp.Resolved(r))
}

func TestResultAccessors(t *testing.T) {
	r := webapp.OkHTML("<p>hi</p>").WithHeader("X-A", "1")
	r.Cookies = []*http.Cookie{{Name: "c", Value: "first"}, {Name: "c", Value: "second"}}
	r.Session = map[string]string{"s": "1"}
	r.Flash = map[string]string{"f": "2"}
	result := resolvedResult(r)

	status, err := result.Status()
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	contentType, _ := result.ContentType()
	assert.Equal(t, "text/html", contentType)
	charset, _ := result.Charset()
	assert.Equal(t, "utf-8", charset)
	header, _ := result.Header("content-type")
	assert.Equal(t, "text/html; charset=utf-8", header)
	header, _ = result.Header("X-A")
	assert.Equal(t, "1", header)
	header, _ = result.Header("X-Missing")
	assert.Equal(t, "", header)

	cookie, _ := result.Cookie("c")
	assert.Equal(t, "second", cookie.Value().Value)
	cookie, _ = result.Cookie("nope")
	assert.False(t, cookie.IsDefined())
	cookies, _ := result.Cookies()
	assert.Len(t, cookies, 2)

	session, _ := result.Session()
	assert.Equal(t, map[string]string{"s": "1"}, session)
	flash, _ := result.Flash()
	assert.Equal(t, map[string]string{"f": "2"}, flash)

	location, _ := result.RedirectLocation()
	assert.False(t, location.IsDefined())
	assert.Equal(t, "Result(Test.fixed, 200 text/html)", result.String())
}

func TestResultAccessorsReturnCopies(t *testing.T) {
	r := webapp.OkText("abc")
	r.Session = map[string]string{"s": "1"}
	result := resolvedResult(r)

	body, _ := result.Body()
	body[0] = 'x'
	session, _ := result.Session()
	session["s"] = "changed"

	body, _ = result.Body()
	assert.Equal(t, "abc", string(body))
	session, _ = result.Session()
	assert.Equal(t, "1", session["s"])
}

func TestResultRedirectLocation(t *testing.T) {
	location, err := resolvedResult(webapp.Redirect("/there")).RedirectLocation()
	require.NoError(t, err)
	assert.Equal(t, "/there", location.OrElse(""))
}

func TestResultBodyAsStringDecodesCharset(t *testing.T) {
	r := webapp.OkText("")
	r.Charset = "iso-8859-1"
	r.Body = []byte{'c', 'a', 'f', 0xe9}
	s, err := resolvedResult(r).BodyAsString()
	require.NoError(t, err)
	assert.Equal(t, "café", s)

	r.Charset = "klingon"
	_, err = resolvedResult(r).BodyAsString()
	assert.Error(t, err)

	r.Charset = ""
	r.Body = []byte("plain")
	s, err = resolvedResult(r).BodyAsString()
	require.NoError(t, err)
	assert.Equal(t, "plain", s)
}

func TestResultBodyAsJSON(t *testing.T) {
	v, err := resolvedResult(webapp.OkJSON([]byte(`{"a":[1,2]}`))).BodyAsJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, v.JSONString())

	_, err = resolvedResult(webapp.OkText(`{"a":1}`)).BodyAsJSON()
	var nje *NotJSONError
	require.True(t, errors.As(err, &nje))
	assert.Equal(t, "text/plain", nje.ContentType)

	_, err = resolvedResult(webapp.OkJSON([]byte(`{"a":`))).BodyAsJSON()
	var mje *codec.MalformedJSONError
	assert.True(t, errors.As(err, &mje))
}

func TestFailedResult(t *testing.T) {
	result := newResult("Test.broken", webapp.Failed(errors.New("sad")))
	assert.False(t, result.IsAsync())
	assert.False(t, result.IsPending())

	err := result.Await(0)
	var de *DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Test.broken", de.Action)
	assert.EqualError(t, errors.Unwrap(err), "sad")

	_, err = result.Status()
	assert.Equal(t, de, err)
	assert.Contains(t, result.String(), "failed")
}
