package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const statusPollInterval = time.Millisecond * 100

// TestServiceInfo is the metadata returned by the service under test from its status
// resource: a human-readable description plus the list of optional capabilities the
// service supports. Tests can be skipped based on missing capabilities.
type TestServiceInfo struct {
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// queryServiceInfo polls the service's status resource until it answers or the
// timeout elapses. Connection failures are retried, since the service may still be
// starting up; once any HTTP response arrives, its content decides the outcome.
// Progress dots go to output so an interactive user can see startup is underway.
func queryServiceInfo(url string, timeout time.Duration, output io.Writer) (TestServiceInfo, error) {
	fmt.Fprintf(output, "Querying service status at %s", url)

	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err != nil {
			lastErr = err
			time.Sleep(statusPollInterval)
			continue
		}
		fmt.Fprintln(output)
		return readServiceInfo(resp, output)
	}
	fmt.Fprintln(output)
	return TestServiceInfo{}, &StartupError{URL: url, Deadline: timeout, LastErr: lastErr}
}

func readServiceInfo(resp *http.Response, output io.Writer) (TestServiceInfo, error) {
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	if resp.StatusCode != 200 {
		return TestServiceInfo{}, fmt.Errorf("service returned status code %d from status query", resp.StatusCode)
	}
	if resp.Body == nil {
		fmt.Fprintln(output, "Status query successful, but the service provided no metadata")
		return TestServiceInfo{}, nil
	}
	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return TestServiceInfo{}, err
	}
	fmt.Fprintf(output, "Status query returned metadata: %s\n", string(respData))

	var info TestServiceInfo
	if err := json.Unmarshal(respData, &info); err != nil {
		return TestServiceInfo{}, fmt.Errorf("malformed status response from service: %s", string(respData))
	}
	return info, nil
}
