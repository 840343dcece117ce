package framework

import (
	"strings"
	"time"
)

// TestID identifies a test by its full path within the run, outermost group first.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Group returns the first element of the test path, or "" for a top-level test.
// The JUnit report groups test cases by this value.
func (t TestID) Group() string {
	if len(t.Path) < 2 {
		return ""
	}
	return t.Path[0]
}

// TestResult is the recorded outcome of a single test or test group.
type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
	Elapsed time.Duration
}

// Results accumulates the outcome of a whole run. Every test that executed or
// skipped itself appears in Tests; the failed subset appears again in Failures.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

func (r Results) SkipCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}
