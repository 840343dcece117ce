// Package servicedef contains the wire-level types of the users API: the bodies it
// accepts and returns, the metadata it reports from its status resource, and the
// capability names the harness keys off of. Both the service implementation and the
// test suite use these types, so the contract lives in one place.
package servicedef

const (
	// CapabilityBasicAuth means the service accepts HTTP Basic credentials on
	// protected endpoints.
	CapabilityBasicAuth = "basic-auth"

	// CapabilityBearerAuth means the service issues JWTs from its login endpoint and
	// accepts them as Bearer tokens on protected endpoints.
	CapabilityBearerAuth = "bearer-auth"
)

// StatusRep is the body of the status resource. The launcher polls this endpoint to
// decide when the service is ready, and the harness reads the capability list from it.
type StatusRep struct {
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

// CreateUserParams is the request body for registering a user.
type CreateUserParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRep is how the service describes a registered user. The password is never
// included.
type UserRep struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenRep is the response of the login endpoint.
type TokenRep struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// GreetingRep is the response of the protected endpoint: a greeting addressed to the
// authenticated user's email.
type GreetingRep struct {
	Hello string `json:"hello"`
}

// ErrorRep is the error body used by the service and by the harness's mock endpoints.
type ErrorRep struct {
	Error string `json:"error"`
}
