package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

// Status queries the service's status resource and decodes its metadata. Unlike the
// other operations it treats a non-200 response as an error, since nothing useful can
// be done with a service that cannot report its own status.
func (c *APIClient) Status() (servicedef.StatusRep, error) {
	resp, err := c.do("GET", "/status", "", nil)
	if err != nil {
		return servicedef.StatusRep{}, err
	}
	if resp.Status != 200 {
		return servicedef.StatusRep{}, fmt.Errorf("status resource returned HTTP %d", resp.Status)
	}
	var status servicedef.StatusRep
	if err := resp.JSON(&status); err != nil {
		return servicedef.StatusRep{}, err
	}
	return status, nil
}

// CreateUser registers a new user. The caller inspects the status code: 201 on
// success, 409 for a duplicate email, 422 for an invalid one.
func (c *APIClient) CreateUser(params servicedef.CreateUserParams) (APIResponse, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return APIResponse{}, err
	}
	return c.do("POST", "/users", "application/json", bytes.NewReader(data))
}

// GetUser fetches a user by email: 200 with a UserRep body, or 404.
func (c *APIClient) GetUser(email string) (APIResponse, error) {
	return c.do("GET", "/users/"+url.PathEscape(email), "", nil)
}

// Login exchanges credentials for a token using the form-encoded resource-owner
// password flow: 200 with a TokenRep body, or 401.
func (c *APIClient) Login(username, password string) (APIResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	return c.do("POST", "/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

// GetProtected calls the protected greeting endpoint with whatever credentials are
// bound to this client: 200 with a GreetingRep body, or 401.
func (c *APIClient) GetProtected() (APIResponse, error) {
	return c.do("GET", "/protected", "", nil)
}

// Get issues a GET to an arbitrary path or absolute URL, for endpoints that do not
// belong to the users API itself, such as the harness's own mock endpoints.
func (c *APIClient) Get(pathOrURL string) (APIResponse, error) {
	return c.do("GET", pathOrURL, "", nil)
}
