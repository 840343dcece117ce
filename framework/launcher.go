package framework

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultStatusPath     = "/status"
	defaultHealthAttempts = 10
	defaultHealthInterval = 500 * time.Millisecond
	defaultStopTimeout    = 5 * time.Second
	defaultContainerPort  = 8080
)

// LaunchOptions configures how the service under test is obtained. Exactly one of
// ExternalURL, Command, or DockerImage selects the mode:
//
//   - ExternalURL: the service is already running somewhere else; the launcher only
//     records its base URL and never manages its lifecycle.
//   - Command: the launcher starts the service as a local child process on a free
//     port, with its database file in a temporary directory.
//   - DockerImage: like Command, but the service runs in a container with the
//     temporary directory mounted into it.
type LaunchOptions struct {
	ExternalURL string
	Command     string
	DockerImage string

	StatusPath     string        // path of the service's status resource
	HealthAttempts int           // number of status polls before giving up
	HealthInterval time.Duration // delay between polls
	StopTimeout    time.Duration // how long to allow for a graceful stop
	ContainerPort  int           // port the service listens on inside its container

	AddrEnvVar   string   // env var telling a launched service where to listen
	DBPathEnvVar string   // env var telling a launched service where to put its database
	ExtraEnv     []string // additional KEY=VALUE pairs for launched services

	Logger Logger
	Output io.Writer // startup progress output
}

func (o LaunchOptions) withDefaults() LaunchOptions {
	if o.StatusPath == "" {
		o.StatusPath = defaultStatusPath
	}
	if o.HealthAttempts == 0 {
		o.HealthAttempts = defaultHealthAttempts
	}
	if o.HealthInterval == 0 {
		o.HealthInterval = defaultHealthInterval
	}
	if o.StopTimeout == 0 {
		o.StopTimeout = defaultStopTimeout
	}
	if o.ContainerPort == 0 {
		o.ContainerPort = defaultContainerPort
	}
	if o.Logger == nil {
		o.Logger = NullLogger()
	}
	if o.Output == nil {
		o.Output = io.Discard
	}
	return o
}

// LaunchedService is the outcome of LaunchService: a reachable base URL plus
// whatever lifecycle state the chosen mode requires.
type LaunchedService struct {
	BaseURL      string
	OwnsService  bool
	DatabasePath string // path of the service's database file; "" unless OwnsService

	statusPath string
	stopFn     func() error
	stopOnce   sync.Once
	stopErr    error
}

func (s *LaunchedService) StatusURL() string {
	return s.BaseURL + s.statusPath
}

// Stop tears down the service if this session started it. For a service the session
// does not own, Stop does nothing. It is safe to call more than once.
func (s *LaunchedService) Stop() error {
	s.stopOnce.Do(func() {
		if s.stopFn != nil {
			s.stopErr = s.stopFn()
		}
	})
	return s.stopErr
}

// LaunchService resolves the configured mode and returns a service that is known to
// be reachable, or a StartupError if it could not be confirmed healthy in time.
func LaunchService(opts LaunchOptions) (*LaunchedService, error) {
	opts = opts.withDefaults()

	modes := 0
	for _, selected := range []bool{opts.ExternalURL != "", opts.Command != "", opts.DockerImage != ""} {
		if selected {
			modes++
		}
	}
	if modes > 1 {
		return nil, &ConfigError{Message: "an external service URL cannot be combined with a locally launched service"}
	}

	switch {
	case opts.ExternalURL != "":
		opts.Logger.Printf("Using externally managed service at %s", opts.ExternalURL)
		return &LaunchedService{
			BaseURL:    strings.TrimSuffix(opts.ExternalURL, "/"),
			statusPath: opts.StatusPath,
		}, nil
	case opts.DockerImage != "":
		return launchContainer(opts)
	default:
		return launchProcess(opts)
	}
}

func waitUntilHealthy(statusURL string, attempts int, interval time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Waiting for service at %s", statusURL)
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(statusURL)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == 200 {
			fmt.Fprintln(output)
			return nil
		}
		lastErr = fmt.Errorf("status code %d", resp.StatusCode)
	}
	fmt.Fprintln(output)
	return &StartupError{
		URL:      statusURL,
		Deadline: time.Duration(attempts) * interval,
		LastErr:  lastErr,
	}
}

// lineWriter forwards whole lines of a launched service's output to a Logger.
type lineWriter struct {
	logger Logger
	buf    []byte
	lock   sync.Mutex
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logger.Printf("%s", string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if len(w.buf) > 0 {
		w.logger.Printf("%s", string(w.buf))
		w.buf = nil
	}
}
