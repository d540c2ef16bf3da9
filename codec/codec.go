// Package codec converts request and response bodies to and from the JSON value model used by
// the harness, which is ldvalue.Value.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// JSONContentType is the content type, including charset, that the harness uses for JSON bodies.
const JSONContentType = "application/json; charset=utf-8"

// MalformedJSONError is returned by ParseJSON when the input is not valid JSON.
type MalformedJSONError struct {
	// Offset is the byte offset into the input at which the problem was detected.
	Offset int64
	Err    error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON at offset %d: %s", e.Offset, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// ToJSON converts a Go value into the JSON value model. Maps, slices, and scalars are copied
// directly; anything else goes through json.Marshal.
func ToJSON(native any) ldvalue.Value {
	switch v := native.(type) {
	case ldvalue.Value:
		return v
	case json.RawMessage:
		return ldvalue.Parse(v)
	default:
		return ldvalue.CopyArbitraryValue(native)
	}
}

// ParseJSON parses a complete JSON document. Empty input, a syntax error, or anything other than
// whitespace after the top-level value all produce a *MalformedJSONError.
func ParseJSON(text []byte) (ldvalue.Value, error) {
	var v ldvalue.Value
	if err := json.Unmarshal(text, &v); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return ldvalue.Null(), &MalformedJSONError{Offset: se.Offset, Err: err}
		}
		return ldvalue.Null(), &MalformedJSONError{Err: err}
	}
	return v, nil
}

// Serialize writes the value as compact JSON text.
func Serialize(v ldvalue.Value) []byte {
	w := jwriter.NewWriter()
	v.WriteToJSONWriter(&w)
	return w.Bytes()
}

// IsJSONContentType returns true for application/json, text/json, and any structured syntax
// type ending in "+json", ignoring parameters such as charset.
func IsJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "text/json":
		return true
	}
	return strings.HasSuffix(mediaType, "+json")
}
