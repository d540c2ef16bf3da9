package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type optionTarget struct {
	name  string
	count int
}

func TestApplyOptions(t *testing.T) {
	var target optionTarget
	err := ApplyOptions(&target,
		ConfigOptionFunc[optionTarget](func(o *optionTarget) error { o.name = "a"; return nil }),
		ConfigOptionFunc[optionTarget](func(o *optionTarget) error { o.count++; return nil }),
	)
	assert.NoError(t, err)
	assert.Equal(t, optionTarget{name: "a", count: 1}, target)
}

func TestApplyOptionsStopsAtFirstError(t *testing.T) {
	var target optionTarget
	fail := errors.New("no")
	err := ApplyOptions(&target,
		ConfigOptionFunc[optionTarget](func(o *optionTarget) error { return fail }),
		ConfigOptionFunc[optionTarget](func(o *optionTarget) error { o.count++; return nil }),
	)
	assert.Equal(t, fail, err)
	assert.Equal(t, 0, target.count)
}
