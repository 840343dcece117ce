package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/usersdemo/api-contract-tests/framework"
)

// ConsoleTestLogger reports test progress on the console and mirrors it into
// the session log file. Captured debug output is shown on the console only
// when the corresponding option is set, but always goes to the file.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Console              io.Writer
	File                 io.Writer
}

func (c *ConsoleTestLogger) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Console, format, args...)
	if c.File != nil {
		fmt.Fprintf(c.File, format, args...)
	}
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.printf("[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		c.printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	if failed {
		c.printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) == 0 {
		return
	}
	if (failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess) {
		debugOutput.Dump(c.Console, "    DEBUG ")
	}
	if c.File != nil {
		debugOutput.Dump(c.File, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		c.printf("  SKIPPED: %s\n", id)
	} else {
		c.printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}
