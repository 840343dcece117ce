package client

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

func recordedRequest(t *testing.T, requestsCh <-chan httphelpers.HTTPRequestInfo) httphelpers.HTTPRequestInfo {
	t.Helper()
	select {
	case info := <-requestsCh:
		return info
	default:
		t.Fatal("handler did not receive a request")
		return httphelpers.HTTPRequestInfo{}
	}
}

func TestRelativePathsArePrefixedWithBaseURL(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	server := httptest.NewServer(handler)
	defer server.Close()

	c := New(server.URL+"/", nil)
	resp, err := c.Get("/some/path")
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	info := recordedRequest(t, requestsCh)
	assert.Equal(t, "/some/path", info.Request.URL.Path)
}

func TestAbsoluteURLsBypassTheBaseURL(t *testing.T) {
	handlerA, requestsA := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	serverA := httptest.NewServer(handlerA)
	defer serverA.Close()
	handlerB, requestsB := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	serverB := httptest.NewServer(handlerB)
	defer serverB.Close()

	c := New(serverA.URL, nil)
	_, err := c.Get(serverB.URL + "/elsewhere")
	require.NoError(t, err)

	assert.Equal(t, 0, len(requestsA))
	assert.Equal(t, 1, len(requestsB))
}

func requestWithAuth(t *testing.T, auth Authenticator) *http.Request {
	t.Helper()
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	server := httptest.NewServer(handler)
	defer server.Close()

	_, err := New(server.URL, nil).WithAuth(auth).GetProtected()
	require.NoError(t, err)
	return recordedRequest(t, requestsCh).Request
}

func TestAnonymousSendsNoCredentials(t *testing.T) {
	req := requestWithAuth(t, Anonymous{})
	assert.Empty(t, req.Header.Values("Authorization"))
}

func TestBasicAuthSendsUsernameAndPassword(t *testing.T) {
	req := requestWithAuth(t, BasicAuth{Username: "someone@example.com", Password: "sekrit"})
	username, password, ok := req.BasicAuth()
	require.True(t, ok, "no basic credentials in request")
	assert.Equal(t, "someone@example.com", username)
	assert.Equal(t, "sekrit", password)
}

func TestBearerTokenSendsAuthorizationHeader(t *testing.T) {
	req := requestWithAuth(t, BearerToken{Token: "abc123"})
	assert.Equal(t, "Bearer abc123", req.Header.Get("Authorization"))
}

func TestWithAuthLeavesOriginalClientAnonymous(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	server := httptest.NewServer(handler)
	defer server.Close()

	c := New(server.URL, nil)
	_ = c.WithAuth(BearerToken{Token: "abc123"})
	_, err := c.GetProtected()
	require.NoError(t, err)

	req := recordedRequest(t, requestsCh).Request
	assert.Empty(t, req.Header.Values("Authorization"))
}

func TestCreateUserPostsJSONBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(201))
	server := httptest.NewServer(handler)
	defer server.Close()

	resp, err := New(server.URL, nil).CreateUser(servicedef.CreateUserParams{
		Email:    "someone@example.com",
		Password: "sekrit",
	})
	require.NoError(t, err)
	assert.Equal(t, 201, resp.Status)

	info := recordedRequest(t, requestsCh)
	assert.Equal(t, "POST", info.Request.Method)
	assert.Equal(t, "/users", info.Request.URL.Path)
	assert.Equal(t, "application/json", info.Request.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"email": "someone@example.com", "password": "sekrit"}`, string(info.Body))
}

func TestGetUserRequestsUserPath(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	server := httptest.NewServer(handler)
	defer server.Close()

	_, err := New(server.URL, nil).GetUser("someone@example.com")
	require.NoError(t, err)

	info := recordedRequest(t, requestsCh)
	assert.Equal(t, "GET", info.Request.Method)
	assert.Equal(t, "/users/someone@example.com", info.Request.URL.Path)
}

func TestLoginPostsFormEncodedCredentials(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	server := httptest.NewServer(handler)
	defer server.Close()

	_, err := New(server.URL, nil).Login("someone@example.com", "sekrit")
	require.NoError(t, err)

	info := recordedRequest(t, requestsCh)
	assert.Equal(t, "POST", info.Request.Method)
	assert.Equal(t, "/login", info.Request.URL.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", info.Request.Header.Get("Content-Type"))

	form, err := url.ParseQuery(string(info.Body))
	require.NoError(t, err)
	assert.Equal(t, "someone@example.com", form.Get("username"))
	assert.Equal(t, "sekrit", form.Get("password"))
}

func TestStatusDecodesServiceMetadata(t *testing.T) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	body := []byte(`{"description": "users-api demo service", "capabilities": ["basic-auth", "bearer-auth"]}`)
	server := httptest.NewServer(httphelpers.HandlerWithResponse(200, headers, body))
	defer server.Close()

	status, err := New(server.URL, nil).Status()
	require.NoError(t, err)
	assert.Equal(t, "users-api demo service", status.Description)
	assert.Equal(t, []string{"basic-auth", "bearer-auth"}, status.Capabilities)
}

func TestStatusFailsOnNon200Response(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(503))
	defer server.Close()

	_, err := New(server.URL, nil).Status()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestResponseJSONDecodesBody(t *testing.T) {
	resp := APIResponse{Status: 200, Body: []byte(`{"hello": "someone@example.com"}`)}
	var rep servicedef.GreetingRep
	require.NoError(t, resp.JSON(&rep))
	assert.Equal(t, "someone@example.com", rep.Hello)
}

func TestResponseJSONReportsMalformedBody(t *testing.T) {
	resp := APIResponse{Status: 200, Body: []byte(`{not json`)}
	var rep servicedef.GreetingRep
	err := resp.JSON(&rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{not json")
}
