package codec

import (
	"errors"
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMap() map[string]any {
	return map[string]any{"key1": "val1", "key2": 2, "key3": true}
}

func TestToJSONFromMap(t *testing.T) {
	v := ToJSON(sampleMap())
	assert.Equal(t, ldvalue.ObjectType, v.Type())
	assert.Equal(t, "val1", v.GetByKey("key1").StringValue())
	assert.Equal(t, 2, v.GetByKey("key2").IntValue())
	assert.True(t, v.GetByKey("key3").BoolValue())
}

func TestToJSONFromStruct(t *testing.T) {
	type item struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	v := ToJSON([]item{{"a", 1}})
	expected, err := ParseJSON([]byte(`[{"name":"a","count":1}]`))
	require.NoError(t, err)
	assert.True(t, expected.Equal(v), "got %s", v)
}

func TestToJSONPassesValuesThrough(t *testing.T) {
	v := ldvalue.ArrayOf(ldvalue.Int(1), ldvalue.Null())
	assert.Equal(t, v, ToJSON(v))
}

func TestRoundTrip(t *testing.T) {
	for _, native := range []any{
		nil,
		true,
		3,
		1.5,
		"x",
		[]any{"a", 1.0, false},
		sampleMap(),
		map[string]any{"nested": map[string]any{"list": []any{map[string]any{}}}},
	} {
		v := ToJSON(native)
		parsed, err := ParseJSON(Serialize(v))
		require.NoError(t, err)
		assert.True(t, v.Equal(parsed), "round trip of %s gave %s", v, parsed)
	}
}

func TestObjectEqualityIgnoresKeyOrder(t *testing.T) {
	a, err := ParseJSON([]byte(`{"key1":"val1","key2":2,"key3":true}`))
	require.NoError(t, err)
	b, err := ParseJSON([]byte(` {"key3":true, "key2":2.0, "key1":"val1"} `))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestParseJSONErrors(t *testing.T) {
	for _, input := range []string{"", "{", `{"a":}`, `[1,2] x`, "nul"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseJSON([]byte(input))
			var me *MalformedJSONError
			require.True(t, errors.As(err, &me), "expected MalformedJSONError, got %T", err)
			assert.NotNil(t, errors.Unwrap(me))
			assert.Contains(t, me.Error(), "malformed JSON at offset")
		})
	}
}

func TestParseJSONErrorOffset(t *testing.T) {
	_, err := ParseJSON([]byte(`[1,2] x`))
	var me *MalformedJSONError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, int64(7), me.Offset)
}

func TestSerializeIsCompact(t *testing.T) {
	v := ldvalue.ObjectBuild().Set("a", ldvalue.ArrayOf(ldvalue.String("b"))).Build()
	assert.Equal(t, `{"a":["b"]}`, string(Serialize(v)))
}

func TestIsJSONContentType(t *testing.T) {
	for _, ct := range []string{
		"application/json",
		"application/json; charset=utf-8",
		"Application/JSON",
		"text/json",
		"application/vnd.api+json",
	} {
		assert.True(t, IsJSONContentType(ct), ct)
	}
	for _, ct := range []string{"", "text/plain", "text/html; charset=utf-8", "application/jsonx", "not a type/"} {
		assert.False(t, IsJSONContentType(ct), ct)
	}
}
