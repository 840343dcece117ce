// Package apitests contains the functional tests for the users API and their
// supporting fixtures.
//
// Test harness infrastructure that is not specific to this API, such as
// launching the service under test and receiving requests on mock endpoints,
// is in the lower-level framework package.
package apitests
