package framework

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const defaultAwaitConnectionTimeout = time.Second * 5

// MockEndpoint is an HTTP endpoint served by the harness's own listener. Tests
// register one when they need the service under test (or the test itself) to have
// something to call that the test fully controls.
type MockEndpoint struct {
	owner          *TestHarness
	id             string
	description    string
	basePath       string
	handler        http.Handler
	newConns       chan IncomingRequestInfo
	activeRequests map[int]context.CancelFunc
	nextRequestKey int
	logger         Logger
	lock           sync.Mutex
	closing        sync.Once
}

// IncomingRequestInfo contains information about an HTTP request that was received
// by one of the mock endpoints.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	Body    []byte
	Context context.Context
}

// NewMockEndpoint registers a new endpoint under the harness's listener and returns
// it. The handler receives every request to the endpoint's base URL or any subpath
// of it, with the URL rewritten so the handler sees only the subpath. The request's
// Context is canceled if Close is called on the endpoint while the request is active.
//
// The description appears in log output and in AwaitConnection timeout errors, so
// give each endpoint a name that identifies it within the test.
func (h *TestHarness) NewMockEndpoint(
	description string,
	handler http.Handler,
	logger Logger,
) *MockEndpoint {
	if logger == nil {
		logger = h.logger
	}
	e := &MockEndpoint{
		owner:          h,
		description:    description,
		handler:        handler,
		newConns:       make(chan IncomingRequestInfo, 10),
		activeRequests: make(map[int]context.CancelFunc),
		logger:         logger,
	}
	h.lock.Lock()
	h.lastEndpointID++
	e.id = strconv.Itoa(h.lastEndpointID)
	e.basePath = endpointPathPrefix + e.id
	h.endpoints[e.id] = e
	h.lock.Unlock()

	return e
}

// BaseURL returns the full external URL of the mock endpoint.
func (e *MockEndpoint) BaseURL() string {
	return e.owner.harnessExternalBaseURL + e.basePath
}

// AwaitConnection waits for an incoming request to the endpoint. A timeout of zero
// or less means the default of five seconds.
func (e *MockEndpoint) AwaitConnection(timeout time.Duration) (IncomingRequestInfo, error) {
	if timeout <= 0 {
		timeout = defaultAwaitConnectionTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case cxn := <-e.newConns:
		return cxn, nil
	case <-deadline.C:
		return IncomingRequestInfo{}, fmt.Errorf("timed out waiting for an incoming request to %s", e.description)
	}
}

// trackRequest derives a cancelable context for a request now being dispatched to
// the endpoint, and remembers its cancel function under the returned key so that
// Close can interrupt the request.
func (e *MockEndpoint) trackRequest(parent context.Context) (context.Context, int) {
	ctx, cancel := context.WithCancel(parent)
	e.lock.Lock()
	e.nextRequestKey++
	key := e.nextRequestKey
	e.activeRequests[key] = cancel
	e.lock.Unlock()
	return ctx, key
}

// forgetRequest drops a request from the active set once its handler has returned.
// The context itself is left alone; it is released when the server finishes the
// request.
func (e *MockEndpoint) forgetRequest(key int) {
	e.lock.Lock()
	delete(e.activeRequests, key)
	e.lock.Unlock()
}

// deliver hands the request info to whoever is waiting in AwaitConnection, without
// blocking the request dispatch if nobody ever reads it.
func (e *MockEndpoint) deliver(incoming IncomingRequestInfo) {
	select {
	case e.newConns <- incoming:
	default:
		e.logger.Printf("Incoming request channel is full for %s", e.description)
	}
}

// Close unregisters the endpoint. Any subsequent requests to it will receive 404
// errors, and the Context of every request currently active on it is canceled.
func (e *MockEndpoint) Close() {
	e.closing.Do(func() {
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.id)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancels := make([]context.CancelFunc, 0, len(e.activeRequests))
		for _, cancel := range e.activeRequests {
			cancels = append(cancels, cancel)
		}
		e.activeRequests = make(map[int]context.CancelFunc)
		close(e.newConns)
		e.lock.Unlock()

		for _, cancel := range cancels {
			cancel()
		}
	})
}
