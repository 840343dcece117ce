// Package logging provides the session log plumbing for the test harness: a
// timestamped log file that captures everything the run printed, and helpers for
// fanning log output out to more than one destination.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fileTimestampFormat = "20060102-150405"
const lineTimestampFormat = "2006-01-02 15:04:05.000"

type Logger interface {
	Printf(message string, args ...interface{})
}

// Level controls how much of the harness's own output is shown on the console.
// The log file always receives everything.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// LogFile is a per-session log file named after the time the run started, like
// logs/api-tests_20060102-150405.log. It satisfies Logger for timestamped messages
// and io.Writer for output that is already formatted.
type LogFile struct {
	Path string
	file *os.File
	lock sync.Mutex
}

func NewLogFile(dir string) (*LogFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("api-tests_%s.log", time.Now().Format(fileTimestampFormat)))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create log file %s: %w", path, err)
	}
	return &LogFile{Path: path, file: f}, nil
}

func (l *LogFile) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.file, "[%s] ", time.Now().Format(lineTimestampFormat))
	fmt.Fprintf(l.file, message, args...)
	fmt.Fprintln(l.file)
}

func (l *LogFile) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.file.Write(p)
}

func (l *LogFile) Close() error {
	return l.file.Close()
}

type teeLogger struct {
	targets []Logger
}

// Tee returns a Logger that forwards every message to each of the given loggers.
func Tee(targets ...Logger) Logger {
	return teeLogger{targets: targets}
}

func (t teeLogger) Printf(message string, args ...interface{}) {
	for _, target := range t.targets {
		target.Printf(message, args...)
	}
}
