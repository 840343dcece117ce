package framework

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alessio/shellescape"
)

func launchProcess(opts LaunchOptions) (*LaunchedService, error) {
	command := strings.Fields(opts.Command)
	if len(command) == 0 {
		return nil, &ConfigError{Message: "no service command was specified"}
	}

	port, err := AvailablePort()
	if err != nil {
		return nil, fmt.Errorf("could not allocate a port for the service: %w", err)
	}

	dir, err := os.MkdirTemp("", "contract-tests-")
	if err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "service.db")

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	env := append(os.Environ(), opts.ExtraEnv...)
	if opts.AddrEnvVar != "" {
		env = append(env, opts.AddrEnvVar+"="+addr)
	}
	if opts.DBPathEnvVar != "" {
		env = append(env, opts.DBPathEnvVar+"="+dbPath)
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = env
	serviceOutput := &lineWriter{logger: LoggerWithPrefix(opts.Logger, "[service] ")}
	cmd.Stdout = serviceOutput
	cmd.Stderr = serviceOutput

	opts.Logger.Printf("Starting service: %s (listening on %s)", shellescape.QuoteCommand(command), addr)
	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("could not start service command %q: %w", opts.Command, err)
	}
	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	svc := &LaunchedService{
		BaseURL:      "http://" + addr,
		OwnsService:  true,
		DatabasePath: dbPath,
		statusPath:   opts.StatusPath,
	}
	svc.stopFn = func() error {
		err := stopProcess(cmd, waitCh, opts.StopTimeout, opts.Logger)
		serviceOutput.Flush()
		if rmErr := removeAllWithRetry(dir); rmErr != nil && err == nil {
			err = rmErr
		}
		return err
	}

	if err := waitUntilHealthy(svc.StatusURL(), opts.HealthAttempts, opts.HealthInterval, opts.Output); err != nil {
		_ = svc.Stop()
		return nil, err
	}
	return svc, nil
}

func stopProcess(cmd *exec.Cmd, waitCh <-chan error, timeout time.Duration, logger Logger) error {
	if cmd.Process == nil {
		return nil
	}
	select {
	case <-waitCh: // already exited on its own
		return nil
	default:
	}

	logger.Printf("Stopping service process (pid %d)", cmd.Process.Pid)
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return cmd.Process.Kill()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-waitCh:
		return nil
	case <-timer.C:
		logger.Printf("Service did not exit within %s, killing it", timeout)
		if err := cmd.Process.Kill(); err != nil {
			return err
		}
		<-waitCh
		return nil
	}
}

// The service may still be flushing its database file as it exits; retry removal
// briefly before reporting an error.
func removeAllWithRetry(path string) error {
	delay := 250 * time.Millisecond
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}
		if err = os.RemoveAll(path); err == nil {
			return nil
		}
	}
	return err
}
