package helpers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalizedJSONString(t *testing.T) {
	v1 := ldvalue.Parse([]byte(`{"b":2,"a":{"d":true,"c":null},"e":[3,"x"]}`))
	v2 := ldvalue.Parse([]byte(`{"e":[3,"x"],"a":{"c":null,"d":true},"b":2}`))
	expected := `{"a":{"c":null,"d":true},"b":2,"e":[3,"x"]}`
	assert.Equal(t, expected, CanonicalizedJSONString(v1))
	assert.Equal(t, expected, CanonicalizedJSONString(v2))
	assert.Equal(t, `"s"`, CanonicalizedJSONString(ldvalue.String("s")))
}
