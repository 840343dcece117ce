package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// runState is shared by every Context in one test run: the accumulated results,
// the logger observing test lifecycle events, and the filter deciding which
// tests run at all.
type runState struct {
	results Results
	logger  TestLogger
	filter  Filter
}

// Context represents a test or subtest that is currently running. It implements
// the testify TestingT interface, so assert and require can be used against it.
type Context struct {
	state       *runState
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes a top-level test scope. All tests are run by calling Run or Context.Run;
// the results of every test that was not filtered out are accumulated and returned.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	state := &runState{
		filter: filter,
		logger: testLogger,
	}
	root := &Context{state: state}
	root.run(action)
	return state.results
}

// run invokes action and records its outcome. Controlled exits (FailNow, Skip)
// arrive as a panic whose value is the Context itself; any other panic value is a
// bug in the test body and is recorded together with its stack.
func (c *Context) run(action func(*Context)) {
	start := time.Now()
	defer func() {
		c.record(recover(), time.Since(start))
	}()
	action(c)
}

func (c *Context) record(recovered interface{}, elapsed time.Duration) {
	if recovered != nil {
		if c.skipped {
			c.state.results.Tests = append(c.state.results.Tests,
				TestResult{TestID: c.id, Skipped: true, Elapsed: elapsed})
			return
		}
		c.failed = true
		if _, controlled := recovered.(*Context); !controlled {
			c.addError(fmt.Errorf("unexpected panic in test: %+v\n%s", recovered, string(debug.Stack())))
		} else if len(c.errors) == 0 {
			c.addError(errors.New("test failed with no failure message"))
		}
	}
	result := TestResult{TestID: c.id, Errors: c.errors, Elapsed: elapsed}
	c.state.results.Tests = append(c.state.results.Tests, result)
	if c.failed {
		c.state.results.Failures = append(c.state.results.Failures, result)
	}
}

func (c *Context) addError(err error) {
	c.errors = append(c.errors, err)
	c.state.logger.TestError(c.id, err)
}

// ID returns the full path identifying this test within the run.
func (c *Context) ID() TestID {
	return c.id
}

// Run executes a subtest; name becomes the next element of its path. A test
// excluded by the run's filter is not executed and leaves no result, only a
// TestSkipped event.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.state.logger.TestStarted(id)
	if c.state.filter != nil && !c.state.filter(id) {
		c.state.logger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	child := &Context{
		id:    id,
		state: c.state,
	}
	child.run(action)
	if child.skipped {
		c.state.logger.TestSkipped(id, child.skipReason)
	} else {
		c.state.logger.TestFinished(id, child.failed, child.debugLogger.Output())
	}
}

// Errorf is called by assertion failures. It marks the test as failed but does not stop it.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.state.logger.TestError(c.id, reformatError(err))
}

// FailNow marks the test as failed and stops it immediately, by panicking with the
// Context itself as the panic value so that run() knows this was a controlled exit.
func (c *Context) FailNow() {
	panic(c)
}

// Skip stops the test immediately and marks it as skipped rather than failed.
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug writes a message to the test's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to the test's captured debug output,
// for handing to components that want a Logger of their own.
func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// testify failure messages arrive with a leading newline and heavy tab indentation;
// flatten those so our own error list stays readable.
func reformatError(err error) error {
	lines := strings.Split(strings.Trim(err.Error(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.ReplaceAll(line, "\t", "  "), " ")
	}
	return errors.New(strings.Join(lines, "\n"))
}
