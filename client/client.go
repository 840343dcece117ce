// Package client is a thin HTTP client for the users API. It prefixes request paths
// with the session's base URL, attaches whatever credentials the caller has bound,
// and logs every request and response with timings at debug level.
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/usersdemo/api-contract-tests/logging"
)

// APIClient issues requests against a single base URL. The zero number of
// credentials is valid; use WithAuth to derive a client that sends some.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
	auth       Authenticator
}

func New(baseURL string, logger logging.Logger) *APIClient {
	if logger == nil {
		logger = nullLogger{}
	}
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithAuth returns a client that is identical except that every request it makes
// carries the given credentials.
func (c *APIClient) WithAuth(auth Authenticator) *APIClient {
	c1 := *c
	c1.auth = auth
	return &c1
}

// BaseURL returns the base URL this client was created with, without a trailing slash.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// APIResponse is a completed response with the body already read, so callers can
// assert on the status code and decode the body as needed without worrying about
// closing anything.
type APIResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the response body into target.
func (r APIResponse) JSON(target interface{}) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("malformed JSON response body %q: %w", string(r.Body), err)
	}
	return nil
}

func (c *APIClient) do(method, path string, contentType string, body io.Reader) (APIResponse, error) {
	url := path
	if strings.HasPrefix(path, "/") {
		url = c.baseURL + path
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return APIResponse{}, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.auth != nil {
		c.auth.Apply(req)
	}

	c.logger.Printf("HTTP %-6s %s", method, url)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("-> error: %s", err)
		return APIResponse{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return APIResponse{}, err
	}
	c.logger.Printf("-> %d in %.1f ms", resp.StatusCode, float64(time.Since(start).Microseconds())/1000)

	return APIResponse{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

type nullLogger struct{}

func (nullLogger) Printf(message string, args ...interface{}) {}
