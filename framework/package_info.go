// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of HTTP API tests.
//
// The general model is:
//
// 1. A launcher resolves where the service under test comes from: an externally managed
// URL that the harness only connects to, a local child process that the harness starts
// on a free port, or a container started from an image. A service the harness started
// is owned by the session and stopped at the end of it; an external one is never
// touched.
//
// 2. The harness queries the service's status resource for a description and a list of
// capabilities, which tests can use to decide whether to run.
//
// 3. The harness can expose any number of mock endpoints to receive requests, for
// standing in for collaborators the service or the tests depend on.
//
// 4. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to
// accumulate success/failure results, which can be reported on the console and as a
// JUnit XML file.
//
// The domain-specific code that knows what is being tested is responsible for the
// typed client operations against the service, the HTTP handlers for mock endpoints,
// and a domain-specific test API on top of the test context.
package framework
