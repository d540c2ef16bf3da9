// Package framework contains the low-level infrastructure shared by the rest of the test harness.
// The base package contains shared types such as Logger and Capabilities; other components are
// in subpackages:
//
// harness: managing a real listening socket for an application under test
//
// helpers: small generic utilities for channels, options, and JSON values
//
// ldtest: a test scope runner similar to Go's testing package, used by the command-line runner
//
// opt: an optional value type
//
// The domain-specific code that knows how to fake requests against an application, and how to
// inspect what comes back, lives in the apptest package.
package framework
