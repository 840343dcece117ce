package framework

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// endpointFixture wires a TestHarness's endpoint dispatcher to a local server,
// without launching any service.
type endpointFixture struct {
	harness *TestHarness
	server  *httptest.Server
}

func newEndpointFixture() *endpointFixture {
	h := &TestHarness{
		endpoints: make(map[string]*MockEndpoint),
		logger:    NullLogger(),
	}
	server := httptest.NewServer(http.HandlerFunc(h.serveHTTP))
	h.harnessExternalBaseURL = server.URL
	return &endpointFixture{harness: h, server: server}
}

func (f *endpointFixture) close() {
	f.server.Close()
	http.DefaultClient.CloseIdleConnections()
}

func TestMockEndpointDispatchesRequestsToHandler(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	var seenPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		w.WriteHeader(200)
	})
	endpoint := f.harness.NewMockEndpoint("test endpoint", handler, nil)
	defer endpoint.Close()

	resp, err := http.Get(endpoint.BaseURL() + "/some/subpath")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "/some/subpath", seenPath)
}

func TestMockEndpointReportsIncomingRequestInfo(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	endpoint := f.harness.NewMockEndpoint("test endpoint", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}), nil)
	defer endpoint.Close()

	resp, err := http.Post(endpoint.BaseURL(), "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	resp.Body.Close()

	info, err := endpoint.AwaitConnection(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "POST", info.Method)
	assert.Equal(t, "hello", string(info.Body))
	assert.Equal(t, "text/plain", info.Headers.Get("Content-Type"))
}

func TestMockEndpointsHaveDistinctBaseURLs(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	e1 := f.harness.NewMockEndpoint("first", http.NotFoundHandler(), nil)
	defer e1.Close()
	e2 := f.harness.NewMockEndpoint("second", http.NotFoundHandler(), nil)
	defer e2.Close()

	assert.NotEqual(t, e1.BaseURL(), e2.BaseURL())
}

func TestRequestToUnknownEndpointReturns404(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	resp, err := http.Get(f.server.URL + "/endpoints/12345")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestClosedEndpointReturns404(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	endpoint := f.harness.NewMockEndpoint("test endpoint", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}), nil)
	url := endpoint.BaseURL()
	endpoint.Close()

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestAwaitConnectionTimesOutWhenNothingArrives(t *testing.T) {
	f := newEndpointFixture()
	defer f.close()

	endpoint := f.harness.NewMockEndpoint("lonely endpoint", http.NotFoundHandler(), nil)
	defer endpoint.Close()

	_, err := endpoint.AwaitConnection(time.Millisecond * 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lonely endpoint")
}
