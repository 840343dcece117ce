package framework

// TestLogger observes the lifecycle of every test in a run. The console reporter
// and the log file writer both implement it.
type TestLogger interface {
	// TestStarted is called before the run's filter is consulted, so a logger
	// sees every test that was considered.
	TestStarted(id TestID)
	// TestError is called for each failure message as it is recorded.
	TestError(id TestID, err error)
	// TestFinished is called when a test has run to completion, with whatever
	// debug output it captured along the way.
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	// TestSkipped is called instead of TestFinished when a test did not run to
	// completion, either because the filter excluded it or because the test
	// skipped itself.
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}
