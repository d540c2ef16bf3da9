package webapp

import "net/http"

const (
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
	ContentTypeJSON = "application/json"
	DefaultCharset  = "utf-8"
)

// Result is what an action produces. Actions normally build one with the helpers in this file
// (Ok, OkHTML, NotFound, Redirect, Async, ...). Session, Flash, and Cookies are filled in from
// the action's Context when the result is finalized, so actions set those through the Context.
type Result struct {
	Status      int
	ContentType string
	Charset     string
	Body        []byte
	Header      http.Header

	Session map[string]string
	Flash   map[string]string
	Cookies []*http.Cookie

	// SessionCleared is set when the action discarded the session, so that a server response
	// deletes the session cookie rather than leaving it alone.
	SessionCleared bool

	promise *Promise
}

// IsAsync returns true for a result created by Async that has not been finalized yet.
func (r Result) IsAsync() bool { return r.promise != nil }

// Promise returns the deferred computation of an async result, or nil.
func (r Result) Promise() *Promise { return r.promise }

// WithHeader returns a copy of the result with an additional response header.
func (r Result) WithHeader(name, value string) Result {
	h := make(http.Header, len(r.Header)+1)
	for k, vv := range r.Header {
		h[k] = append([]string(nil), vv...)
	}
	h.Set(name, value)
	r.Header = h
	return r
}

// Status returns a result with only a status code.
func Status(status int) Result {
	return Result{Status: status}
}

// Ok returns a 200 result with a body of the specified content type and UTF-8 charset.
func Ok(contentType string, body []byte) Result {
	return Result{Status: http.StatusOK, ContentType: contentType, Charset: DefaultCharset, Body: body}
}

func OkText(text string) Result { return Ok(ContentTypeText, []byte(text)) }

func OkHTML(html string) Result { return Ok(ContentTypeHTML, []byte(html)) }

// OkContent returns a 200 result for rendered view content.
func OkContent(content Content) Result {
	return Ok(content.ContentType, []byte(content.Body))
}

// OkJSON returns a 200 result whose body is already-serialized JSON.
func OkJSON(body []byte) Result { return Ok(ContentTypeJSON, body) }

func BadRequest(text string) Result {
	r := OkText(text)
	r.Status = http.StatusBadRequest
	return r
}

func NotFound(text string) Result {
	r := OkText(text)
	r.Status = http.StatusNotFound
	return r
}

func InternalServerError(text string) Result {
	r := OkText(text)
	r.Status = http.StatusInternalServerError
	return r
}

// Redirect returns a 303 See Other result.
func Redirect(location string) Result {
	return Result{Status: http.StatusSeeOther, Header: http.Header{"Location": {location}}}
}

// Async returns a result that will be completed by the promise.
func Async(p *Promise) Result {
	return Result{promise: p}
}

func (r Result) contentTypeHeader() string {
	if r.ContentType == "" {
		return ""
	}
	if r.Charset == "" {
		return r.ContentType
	}
	return r.ContentType + "; charset=" + r.Charset
}
