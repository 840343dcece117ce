package usersvc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

type serverFixture struct {
	t      *testing.T
	store  *Store
	server *httptest.Server
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	store := openTestStore(t)
	cfg := Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	s := NewServer(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return &serverFixture{t: t, store: store, server: server}
}

func (f *serverFixture) get(path string, configure func(*http.Request)) *http.Response {
	f.t.Helper()
	req, err := http.NewRequest("GET", f.server.URL+path, nil)
	require.NoError(f.t, err)
	if configure != nil {
		configure(req)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(f.t, err)
	return resp
}

func (f *serverFixture) postJSON(path, body string) *http.Response {
	f.t.Helper()
	resp, err := f.server.Client().Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(f.t, err)
	return resp
}

func (f *serverFixture) login(username, password string) *http.Response {
	f.t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	resp, err := f.server.Client().PostForm(f.server.URL+"/login", form)
	require.NoError(f.t, err)
	return resp
}

func (f *serverFixture) createUser(email, password string) User {
	f.t.Helper()
	user, err := f.store.Create(context.Background(), email, password)
	require.NoError(f.t, err)
	return user
}

func (f *serverFixture) decodeBody(resp *http.Response, target interface{}) {
	f.t.Helper()
	defer resp.Body.Close()
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(target))
}

func TestStatusResourceDescribesService(t *testing.T) {
	f := newServerFixture(t)

	resp := f.get("/status", nil)
	assert.Equal(t, 200, resp.StatusCode)

	var status servicedef.StatusRep
	f.decodeBody(resp, &status)
	assert.Equal(t, "users-api demo service", status.Description)
	assert.Contains(t, status.Capabilities, servicedef.CapabilityBasicAuth)
	assert.Contains(t, status.Capabilities, servicedef.CapabilityBearerAuth)
}

func TestCreateUserReturnsCreatedUser(t *testing.T) {
	f := newServerFixture(t)

	resp := f.postJSON("/users", `{"email": "someone@example.com", "password": "sekrit"}`)
	assert.Equal(t, 201, resp.StatusCode)

	var user servicedef.UserRep
	f.decodeBody(resp, &user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "someone@example.com", user.Email)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	resp := f.postJSON("/users", `{"email": "someone@example.com", "password": "other"}`)
	assert.Equal(t, 409, resp.StatusCode)

	var errRep servicedef.ErrorRep
	f.decodeBody(resp, &errRep)
	assert.Equal(t, "email already registered", errRep.Error)
}

func TestCreateUserRejectsInvalidBodies(t *testing.T) {
	f := newServerFixture(t)

	for _, body := range []string{
		`{"email": "not-an-email", "password": "sekrit"}`,
		`{"email": "", "password": "sekrit"}`,
		`{"email": "someone@example.com", "password": ""}`,
		`{"email": "someone@example.com"}`,
		`this is not json`,
	} {
		resp := f.postJSON("/users", body)
		resp.Body.Close()
		assert.Equal(t, 422, resp.StatusCode, "should have rejected body %q", body)
	}
}

func TestGetUserReturnsRegisteredUser(t *testing.T) {
	f := newServerFixture(t)
	created := f.createUser("someone@example.com", "sekrit")

	resp := f.get("/users/someone@example.com", nil)
	assert.Equal(t, 200, resp.StatusCode)

	var user servicedef.UserRep
	f.decodeBody(resp, &user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "someone@example.com", user.Email)
}

func TestGetUserReturns404ForUnknownEmail(t *testing.T) {
	f := newServerFixture(t)

	resp := f.get("/users/nobody@example.com", nil)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestLoginReturnsBearerToken(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	resp := f.login("someone@example.com", "sekrit")
	assert.Equal(t, 200, resp.StatusCode)

	var token servicedef.TokenRep
	f.decodeBody(resp, &token)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	resp := f.login("someone@example.com", "wrong-password")
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
}

func TestProtectedEndpointRequiresCredentials(t *testing.T) {
	f := newServerFixture(t)

	resp := f.get("/protected", nil)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Bearer, Basic", resp.Header.Get("WWW-Authenticate"))

	var errRep servicedef.ErrorRep
	f.decodeBody(resp, &errRep)
	assert.Equal(t, "Not authenticated", errRep.Error)
}

func TestProtectedEndpointAcceptsBasicAuth(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	resp := f.get("/protected", func(req *http.Request) {
		req.SetBasicAuth("someone@example.com", "sekrit")
	})
	assert.Equal(t, 200, resp.StatusCode)

	var greeting servicedef.GreetingRep
	f.decodeBody(resp, &greeting)
	assert.Equal(t, "someone@example.com", greeting.Hello)
}

func TestProtectedEndpointRejectsWrongBasicPassword(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	resp := f.get("/protected", func(req *http.Request) {
		req.SetBasicAuth("someone@example.com", "wrong-password")
	})
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}

func TestProtectedEndpointAcceptsTokenFromLogin(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	loginResp := f.login("someone@example.com", "sekrit")
	require.Equal(t, 200, loginResp.StatusCode)
	var token servicedef.TokenRep
	f.decodeBody(loginResp, &token)

	resp := f.get("/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	})
	assert.Equal(t, 200, resp.StatusCode)

	var greeting servicedef.GreetingRep
	f.decodeBody(resp, &greeting)
	assert.Equal(t, "someone@example.com", greeting.Hello)
}

func TestProtectedEndpointRejectsInvalidBearerToken(t *testing.T) {
	f := newServerFixture(t)

	resp := f.get("/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not-a-real-token")
	})
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}

func TestProtectedEndpointRejectsTokenForDeletedUser(t *testing.T) {
	f := newServerFixture(t)
	f.createUser("someone@example.com", "sekrit")

	loginResp := f.login("someone@example.com", "sekrit")
	require.Equal(t, 200, loginResp.StatusCode)
	var token servicedef.TokenRep
	f.decodeBody(loginResp, &token)

	require.NoError(t, f.store.DeleteAll(context.Background()))

	resp := f.get("/protected", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	})
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode, "token should stop working once the user is gone")
}
