// Package ldtest contains a test runner framework that is similar to Go's testing package, but
// runs as regular application code rather than under go test. The command-line runner uses it to
// run the bundled application suite with filters, capability checks, and JUnit output.
package ldtest
