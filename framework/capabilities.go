package framework

import "github.com/launchdarkly/app-test-harness/framework/helpers"

const (
	// CapabilityServer means that tests are allowed to bind a real listening socket.
	CapabilityServer = "server"

	// CapabilityBrowser means that tests may drive a running server through the browser driver.
	// It is only meaningful together with CapabilityServer.
	CapabilityBrowser = "browser"
)

// Capabilities is a type alias for a list of strings representing what the current test run is
// allowed to do. Tests that need a capability that is absent are skipped rather than failed.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	return helpers.SliceContains(name, cs)
}

// HasAll returns true if every one of the specified strings appears in the list.
func (cs Capabilities) HasAll(names ...string) bool {
	for _, n := range names {
		if !cs.Has(n) {
			return false
		}
	}
	return true
}
