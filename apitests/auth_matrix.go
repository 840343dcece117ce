package apitests

import (
	"github.com/usersdemo/api-contract-tests/client"
	"github.com/usersdemo/api-contract-tests/servicedef"
)

// RunWithAuthVariants runs the same test body three times, as separate
// subtests: once unauthenticated, once with basic credentials, and once with
// a bearer token. Each variant gets its own test result, so a failure under
// one credential style never masks the others, and no variant depends on
// another having run.
//
// The basic and bearer variants are skipped when the service does not
// advertise the corresponding capability. The seed account is recreated
// before the body runs, since the database was reset at the start of the
// test.
func RunWithAuthVariants(t *T, action func(t *T, auth client.Authenticator)) {
	t.Run("auth=none", func(t *T) {
		action(t, client.Anonymous{})
	})

	t.Run("auth=basic", func(t *T) {
		t.RequireCapability(servicedef.CapabilityBasicAuth)
		t.EnsureTestUser()
		action(t, client.BasicAuth{Username: TestUserEmail, Password: TestUserPassword})
	})

	t.Run("auth=bearer", func(t *T) {
		t.RequireCapability(servicedef.CapabilityBearerAuth)
		token := t.BearerToken()
		action(t, client.BearerToken{Token: token})
	})
}
