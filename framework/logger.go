package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const capturedTimestampFormat = "2006-01-02 15:04:05.000"

// Logger is the destination for debug output within the framework. The launcher,
// the mock endpoint manager, and each test's Context all write through this
// interface so callers decide where the output lands.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

type prefixedLogger struct {
	wrapped Logger
	prefix  string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.wrapped.Printf(p.prefix+message, args...)
}

// LoggerWithPrefix returns a Logger that prepends the given prefix to every message
// before delegating to the wrapped Logger.
func LoggerWithPrefix(wrapped Logger, prefix string) Logger {
	return prefixedLogger{wrapped: wrapped, prefix: prefix}
}

// CapturedMessage is one log line recorded by a CapturingLogger, with the time it
// was written.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is everything a CapturingLogger recorded, in order.
type CapturedOutput []CapturedMessage

// Dump writes the captured messages to dest, one per line, each preceded by the
// given prefix and its timestamp.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n", prefix, m.Time.Format(capturedTimestampFormat), m.Message)
	}
}

// CapturingLogger is a Logger that records messages in memory instead of writing
// them anywhere. Each test's Context uses one so that debug output can be replayed
// only when the test fails. The zero value is ready to use and safe for concurrent
// writers.
type CapturingLogger struct {
	messages []CapturedMessage
	lock     sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	m := CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)}
	l.lock.Lock()
	l.messages = append(l.messages, m)
	l.lock.Unlock()
}

// Output returns a copy of everything recorded so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.messages...)
}
