package apitests

import (
	"github.com/usersdemo/api-contract-tests/framework"
	"github.com/usersdemo/api-contract-tests/servicedef"
)

// AllCapabilities lists every capability that some test in this suite checks
// for with RequireCapability.
var AllCapabilities = []string{
	servicedef.CapabilityBasicAuth,
	servicedef.CapabilityBearerAuth,
}

// RunTestSuite runs all of the API tests against the service held by the harness,
// returning the accumulated results.
func RunTestSuite(
	harness *framework.TestHarness,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{harness: harness}
	defer func() {
		if env.resetter != nil {
			_ = env.resetter.Close()
		}
	}()

	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("users", DoUserTests)
		t.Run("authentication", DoAuthenticationTests)
		t.Run("user details (mocked)", DoUserDetailsTests)
	})
}
