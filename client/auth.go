package client

import "net/http"

// Authenticator decorates an outgoing request with credentials. Its String form is
// used in test names and log lines, so implementations keep it short and stable.
type Authenticator interface {
	Apply(req *http.Request)
	String() string
}

// Anonymous sends no credentials at all.
type Anonymous struct{}

func (Anonymous) Apply(*http.Request) {}

func (Anonymous) String() string { return "none" }

// BasicAuth sends an HTTP Basic Authorization header.
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(b.Username, b.Password)
}

func (b BasicAuth) String() string { return "basic" }

// BearerToken sends a Bearer token Authorization header.
type BearerToken struct {
	Token string
}

func (b BearerToken) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.Token)
}

func (b BearerToken) String() string { return "bearer" }
