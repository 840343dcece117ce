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

const endpointPathPrefix = "/endpoints/"
const httpListenerTimeout = time.Second * 10

// TestHarness holds the state of a test session: the service under test, the
// metadata it reported from its status resource, and the harness's own HTTP
// listener for mock endpoints that tests can register at runtime.
type TestHarness struct {
	service                *LaunchedService
	harnessExternalBaseURL string
	serviceInfo            TestServiceInfo
	endpoints              map[string]*MockEndpoint
	lastEndpointID         int
	logger                 Logger
	lock                   sync.Mutex
}

// NewTestHarness creates a TestHarness around a service that the launcher has already
// resolved, and verifies that the service is responding by querying its status resource.
// It also starts an HTTP listener on the specified port to receive requests to mock
// endpoints.
func NewTestHarness(
	service *LaunchedService,
	harnessExternalHostname string,
	harnessPort int,
	statusQueryTimeout time.Duration,
	debugLogger Logger,
	startupOutput io.Writer,
) (*TestHarness, error) {
	if debugLogger == nil {
		debugLogger = NullLogger()
	}

	h := &TestHarness{
		service:                service,
		harnessExternalBaseURL: fmt.Sprintf("http://%s:%d", harnessExternalHostname, harnessPort),
		endpoints:              make(map[string]*MockEndpoint),
		logger:                 debugLogger,
	}

	serviceInfo, err := queryServiceInfo(service.StatusURL(), statusQueryTimeout, startupOutput)
	if err != nil {
		return nil, err
	}
	h.serviceInfo = serviceInfo

	if err := h.startListener(harnessPort); err != nil {
		return nil, err
	}

	return h, nil
}

// ServiceBaseURL returns the base URL of the service under test, with no trailing slash.
func (h *TestHarness) ServiceBaseURL() string {
	return h.service.BaseURL
}

func (h *TestHarness) ServiceInfo() TestServiceInfo {
	return h.serviceInfo
}

func (h *TestHarness) ServiceHasCapability(desired string) bool {
	for _, capability := range h.serviceInfo.Capabilities {
		if capability == desired {
			return true
		}
	}
	return false
}

// OwnsService indicates whether this session started the service itself. When false,
// the service belongs to someone else and the harness must never stop it or touch
// its storage.
func (h *TestHarness) OwnsService() bool {
	return h.service.OwnsService
}

// DatabasePath returns the path of the service's database file, or "" when the
// session does not own the service.
func (h *TestHarness) DatabasePath() string {
	return h.service.DatabasePath
}

// Close tears down whatever the session owns. A service that was already running
// before the session began is left untouched.
func (h *TestHarness) Close() error {
	return h.service.Stop()
}

// parseEndpointPath splits an incoming URL path into the endpoint ID and the subpath
// that the endpoint's handler should see. ok is false if the path does not belong to
// the mock endpoint tree at all.
func parseEndpointPath(fullPath string) (endpointID, subpath string, ok bool) {
	trimmed, found := strings.CutPrefix(fullPath, endpointPathPrefix)
	if !found {
		return "", "", false
	}
	endpointID, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return trimmed, "", true
	}
	return endpointID, "/" + rest, true
}

func readRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

func (h *TestHarness) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == "HEAD" {
		w.WriteHeader(200) // answers the self-check in startListener
		return
	}

	endpointID, subpath, ok := parseEndpointPath(req.URL.Path)
	if !ok {
		h.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(404)
		return
	}

	h.lock.Lock()
	e := h.endpoints[endpointID]
	h.lock.Unlock()
	if e == nil {
		h.logger.Printf("Received request for unknown endpoint %s", req.URL.Path)
		w.WriteHeader(404)
		return
	}

	body, err := readRequestBody(req)
	if err != nil {
		h.logger.Printf("Unexpected error trying to read request body: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, requestKey := e.trackRequest(req.Context())
	defer e.forgetRequest(requestKey)

	// Push the request info before dispatching, so that a test blocked in
	// AwaitConnection can proceed even while the handler is still running.
	e.deliver(IncomingRequestInfo{
		Headers: req.Header,
		Method:  req.Method,
		Body:    body,
		Context: ctx,
	})

	transformed := req.WithContext(ctx)
	u := *req.URL
	u.Path = subpath
	transformed.URL = &u
	if body != nil {
		transformed.Body = io.NopCloser(bytes.NewReader(body))
	}

	e.handler.ServeHTTP(w, transformed)
}

// startListener starts the harness's own HTTP server and polls it until it is
// provably accepting requests, so that no test can race against its startup.
func (h *TestHarness) startListener(port int) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: http.HandlerFunc(h.serveHTTP),
	}
	go func() {
		if err := server.ListenAndServe(); err != nil {
			panic(err)
		}
	}()

	selfCheckURL := fmt.Sprintf("http://localhost:%d", port)
	deadline := time.NewTimer(httpListenerTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			return fmt.Errorf("could not detect own listener at %s", server.Addr)
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(selfCheckURL)
			if err == nil && resp.StatusCode == 200 {
				return nil
			}
		}
	}
}
