package framework

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alessio/shellescape"
)

const containerDataDir = "/data"

func launchContainer(opts LaunchOptions) (*LaunchedService, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker is not available in PATH: %w", err)
	}

	hostPort, err := AvailablePort()
	if err != nil {
		return nil, fmt.Errorf("could not allocate a port for the service: %w", err)
	}

	dir, err := os.MkdirTemp("", "contract-tests-")
	if err != nil {
		return nil, err
	}
	// The mounted directory must be writable by whatever user the container runs as.
	_ = os.Chmod(dir, 0o777)
	dbPath := filepath.Join(dir, "service.db")

	args := []string{
		"run", "--detach",
		"--publish", fmt.Sprintf("127.0.0.1:%d:%d", hostPort, opts.ContainerPort),
		"--volume", fmt.Sprintf("%s:%s", dir, containerDataDir),
	}
	if opts.AddrEnvVar != "" {
		args = append(args, "--env", fmt.Sprintf("%s=0.0.0.0:%d", opts.AddrEnvVar, opts.ContainerPort))
	}
	if opts.DBPathEnvVar != "" {
		args = append(args, "--env", opts.DBPathEnvVar+"="+containerDataDir+"/service.db")
	}
	for _, kv := range opts.ExtraEnv {
		args = append(args, "--env", kv)
	}
	args = append(args, opts.DockerImage)

	opts.Logger.Printf("Starting container: docker %s", shellescape.QuoteCommand(args))
	out, err := exec.Command("docker", args...).Output()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("docker run failed: %w%s", err, dockerStderr(err))
	}
	containerID := strings.TrimSpace(string(out))
	opts.Logger.Printf("Started container %s", shortID(containerID))

	svc := &LaunchedService{
		BaseURL:      fmt.Sprintf("http://127.0.0.1:%d", hostPort),
		OwnsService:  true,
		DatabasePath: dbPath,
		statusPath:   opts.StatusPath,
	}
	svc.stopFn = func() error {
		return stopContainer(containerID, dir, opts.StopTimeout, opts.Logger)
	}

	if err := waitUntilHealthy(svc.StatusURL(), opts.HealthAttempts, opts.HealthInterval, opts.Output); err != nil {
		_ = svc.Stop()
		return nil, err
	}
	return svc, nil
}

// stopContainer captures the container's log output for debugging, then asks docker
// to stop it. "docker stop" sends SIGTERM, waits for the grace period, and then
// SIGKILLs, so the terminate-then-kill policy comes for free.
func stopContainer(containerID, dataDir string, timeout time.Duration, logger Logger) error {
	logger.Printf("Stopping container %s", shortID(containerID))
	if out, err := exec.Command("docker", "logs", containerID).CombinedOutput(); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			if line != "" {
				logger.Printf("[service] %s", line)
			}
		}
	}

	var firstErr error
	stopArgs := []string{"stop", "--time", strconv.Itoa(int(timeout.Seconds())), containerID}
	if err := exec.Command("docker", stopArgs...).Run(); err != nil {
		firstErr = fmt.Errorf("docker stop failed: %w", err)
	}
	if err := exec.Command("docker", "rm", "--force", containerID).Run(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("docker rm failed: %w", err)
	}
	if err := removeAllWithRetry(dataDir); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func dockerStderr(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return ": " + strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}

func shortID(containerID string) string {
	if len(containerID) > 12 {
		return containerID[:12]
	}
	return containerID
}
