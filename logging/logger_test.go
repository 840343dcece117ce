package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for input, expected := range map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"":        LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	} {
		level, err := ParseLevel(input)
		require.NoError(t, err, "for input %q", input)
		assert.Equal(t, expected, level, "for input %q", input)
	}

	_, err := ParseLevel("chatty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}

func TestNewLogFileCreatesTimestampedFileInDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	logFile, err := NewLogFile(dir)
	require.NoError(t, err)
	defer logFile.Close()

	assert.Equal(t, dir, filepath.Dir(logFile.Path))
	name := filepath.Base(logFile.Path)
	assert.Regexp(t, `^api-tests_\d{8}-\d{6}\.log$`, name)

	_, err = os.Stat(logFile.Path)
	assert.NoError(t, err)
}

func TestLogFilePrintfWritesTimestampedLines(t *testing.T) {
	logFile, err := NewLogFile(t.TempDir())
	require.NoError(t, err)

	logFile.Printf("hello %s", "world")
	logFile.Printf("second line")
	require.NoError(t, logFile.Close())

	data, err := os.ReadFile(logFile.Path)
	require.NoError(t, err)
	assert.Regexp(t, `(?m)^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{3}\] hello world$`, string(data))
	assert.Contains(t, string(data), "second line\n")
}

func TestLogFileWritePassesBytesThroughUnchanged(t *testing.T) {
	logFile, err := NewLogFile(t.TempDir())
	require.NoError(t, err)

	n, err := logFile.Write([]byte("raw output\n"))
	require.NoError(t, err)
	assert.Equal(t, len("raw output\n"), n)
	require.NoError(t, logFile.Close())

	data, err := os.ReadFile(logFile.Path)
	require.NoError(t, err)
	assert.Equal(t, "raw output\n", string(data))
}

type memoryLogger struct {
	lines []string
}

func (m *memoryLogger) Printf(message string, args ...interface{}) {
	m.lines = append(m.lines, fmt.Sprintf(message, args...))
}

func TestTeeForwardsToEveryTarget(t *testing.T) {
	first, second := &memoryLogger{}, &memoryLogger{}

	logger := Tee(first, second)
	logger.Printf("hello %d", 1)
	logger.Printf("hello %d", 2)

	assert.Equal(t, []string{"hello 1", "hello 2"}, first.lines)
	assert.Equal(t, []string{"hello 1", "hello 2"}, second.lines)
}
