package framework

import (
	"fmt"
	"time"
)

// StartupError means the service under test could not be confirmed healthy before the
// configured deadline. The session aborts without running any tests.
type StartupError struct {
	URL      string
	Deadline time.Duration
	LastErr  error
}

func (e *StartupError) Error() string {
	msg := fmt.Sprintf("service at %s did not become ready within %s", e.URL, e.Deadline)
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %s)", e.LastErr)
	}
	return msg
}

func (e *StartupError) Unwrap() error {
	return e.LastErr
}

// ConfigError means the command-line options contradicted each other, such as asking
// for an external service URL and a locally launched one at the same time. It is
// reported before any service is started or any test is run.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
