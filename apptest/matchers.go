package apptest

import (
	"fmt"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"
)

// The functions in this file adapt Result accessors to the matchers API, so that assertions can
// be written as m.In(t).Assert(result, apptest.HasStatus(200)). Each one fails with the
// accessor's error if the Result is pending or failed.

func resultProperty(name string, get func(*Result) (interface{}, error)) m.MatcherTransform {
	return m.Transform(name, func(value interface{}) (interface{}, error) {
		r, ok := value.(*Result)
		if !ok || r == nil {
			return nil, fmt.Errorf("expected a non-nil *Result, got %T", value)
		}
		return get(r)
	}).EnsureInputValueType((*Result)(nil))
}

func ResultStatus() m.MatcherTransform {
	return resultProperty("status", func(r *Result) (interface{}, error) { return r.Status() })
}

func ResultContentType() m.MatcherTransform {
	return resultProperty("content type", func(r *Result) (interface{}, error) { return r.ContentType() })
}

func ResultCharset() m.MatcherTransform {
	return resultProperty("charset", func(r *Result) (interface{}, error) { return r.Charset() })
}

// BodyString is for matching the body decoded as a string, as in BodyString().Should(...).
func BodyString() m.MatcherTransform {
	return resultProperty("body", func(r *Result) (interface{}, error) { return r.BodyAsString() })
}

// BodyJSON is for matching the body parsed as JSON, for instance with m.JSONStrEqual.
func BodyJSON() m.MatcherTransform {
	return resultProperty("JSON body", func(r *Result) (interface{}, error) { return r.BodyAsJSON() })
}

// ResultHeader is for matching a response header.
func ResultHeader(name string) m.MatcherTransform {
	return resultProperty("header "+name, func(r *Result) (interface{}, error) { return r.Header(name) })
}

func ResultSession() m.MatcherTransform {
	return resultProperty("session", func(r *Result) (interface{}, error) { return r.Session() })
}

func ResultFlash() m.MatcherTransform {
	return resultProperty("flash", func(r *Result) (interface{}, error) { return r.Flash() })
}

// ResultCookieValue is for matching the value of a cookie. A missing cookie has the value "".
func ResultCookieValue(name string) m.MatcherTransform {
	return resultProperty("cookie "+name, func(r *Result) (interface{}, error) {
		c, err := r.Cookie(name)
		if err != nil || !c.IsDefined() {
			return "", err
		}
		return c.Value().Value, nil
	})
}

func HasStatus(status int) m.Matcher { return ResultStatus().Should(m.Equal(status)) }

func HasContentType(contentType string) m.Matcher {
	return ResultContentType().Should(m.Equal(contentType))
}

func HasCharset(charset string) m.Matcher { return ResultCharset().Should(m.Equal(charset)) }

// HasBodyString matches a body that is exactly equal to the string.
func HasBodyString(body string) m.Matcher { return BodyString().Should(m.Equal(body)) }

func HasHeader(name, value string) m.Matcher { return ResultHeader(name).Should(m.Equal(value)) }

func HasSessionValue(key, value string) m.Matcher {
	return ResultSession().Should(m.ValueForKey(key).Should(m.Equal(value)))
}

func HasFlashValue(key, value string) m.Matcher {
	return ResultFlash().Should(m.ValueForKey(key).Should(m.Equal(value)))
}

func HasCookieValue(name, value string) m.Matcher {
	return ResultCookieValue(name).Should(m.Equal(value))
}
