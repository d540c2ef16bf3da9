package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type myStruct struct {
	Prop string
}

type named string

func (n named) String() string { return "name:" + string(n) }

func TestNone(t *testing.T) {
	assert.False(t, None[string]().IsDefined())

	assert.Equal(t, 0, None[int]().Value())
	assert.Equal(t, "", None[string]().Value())
	assert.Nil(t, None[*string]().Value())
	assert.Equal(t, myStruct{}, None[myStruct]().Value())
}

func TestSome(t *testing.T) {
	assert.True(t, Some("").IsDefined())

	assert.Equal(t, 1, Some(1).Value())
	assert.Equal(t, "x", Some("x").Value())
}

func TestGet(t *testing.T) {
	v, ok := Some(3).Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = None[int]().Get()
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestOrElse(t *testing.T) {
	assert.Equal(t, 3, None[int]().OrElse(3))
	assert.Equal(t, 4, Some(4).OrElse(3))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[none]", None[int]().String())
	assert.Equal(t, "5", Some(5).String())
	assert.Equal(t, "name:x", Some(named("x")).String())
}
