package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapturingLoggerRecordsMessages(t *testing.T) {
	var l CapturingLogger
	l.Println("a", "b")
	l.Printf("c=%d", 3)

	out := l.Output()
	if assert.Len(t, out, 2) {
		assert.Equal(t, "a b", out[0].Message)
		assert.Equal(t, "c=3", out[1].Message)
	}
	assert.True(t, out.Contains("c=3"))
	assert.False(t, out.Contains("d"))
}

func TestCapturingLoggerRedirectsToChild(t *testing.T) {
	var parent, child CapturingLogger
	parent.Printf("before")
	parent.AddChildLogger(&child)
	parent.Printf("during")
	parent.RemoveChildLogger(&child)
	parent.Printf("after")

	assert.Equal(t, []string{"before", "after"}, messages(parent.Output()))
	assert.Equal(t, []string{"before", "during"}, messages(child.Output()))
}

func TestLoggerWithPrefix(t *testing.T) {
	var base CapturingLogger
	p := LoggerWithPrefix(&base, "[app] ")
	p.Printf("started %s", "ok")
	assert.Equal(t, []string{"[app] started ok"}, messages(base.Output()))
	p.Println("stopped", 2)
	assert.Equal(t, []string{"[app] started ok", "[app] stopped 2"}, messages(base.Output()))

	assert.Equal(t, NullLogger(), LoggerWithPrefix(nil, "x"))
}

func TestCapabilities(t *testing.T) {
	cs := Capabilities{CapabilityServer}
	assert.True(t, cs.Has(CapabilityServer))
	assert.False(t, cs.Has(CapabilityBrowser))
	assert.False(t, cs.HasAll(CapabilityServer, CapabilityBrowser))
	assert.True(t, Capabilities{CapabilityBrowser, CapabilityServer}.HasAll(CapabilityServer, CapabilityBrowser))
}

func messages(output CapturedOutput) []string {
	ret := make([]string, 0, len(output))
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}
