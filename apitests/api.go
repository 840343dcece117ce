package apitests

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/client"
	"github.com/usersdemo/api-contract-tests/framework"
	"github.com/usersdemo/api-contract-tests/servicedef"
)

// Seed account used by the authentication fixtures. Tests that need working
// credentials recreate it on demand, so the database reset between tests is
// harmless.
const (
	TestUserEmail    = "test-user@example.com"
	TestUserPassword = "super_strong_password"
)

// environment holds session-scoped state shared by every test scope: the
// harness, the database resetter, and the bearer token that is obtained once
// and reused for the rest of the session.
type environment struct {
	harness      *framework.TestHarness
	resetter     *dbResetter
	bearerToken  string
	haveToken    bool
	resetSkipped bool
}

// T represents a test or subtest in the API test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an
// environment that is outside of the Go test runner, and with some extra
// features such as debug logging that are convenient for our use case. Those
// features are provided by our lower-level framework package.
//
// Every T instance has an API client pointed at the service under test, whose
// requests and responses are captured in the test's debug log. To make test
// assertions, you can use the assert and require packages, passing the *T as
// if it were a *testing.T.
type T struct {
	context  *framework.Context
	env      *environment
	client   *client.APIClient
	cleanups []func()
}

func newTestScope(context *framework.Context, env *environment) *T {
	return &T{
		context: context,
		env:     env,
		client:  client.New(env.harness.ServiceBaseURL(), context.DebugLogger()),
	}
}

func (t *T) close() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
	t.cleanups = nil
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
//
// Before the subtest body runs, the database of a harness-owned service is
// wiped, so no test can observe state left behind by another. The reset
// happens whether the previous test passed, failed, or panicked.
func (t *T) Run(name string, action func(*T)) {
	var t1 *T
	t.context.Run(name, func(c *framework.Context) {
		t1 = newTestScope(c, t.env)
		t1.resetDatabase()
		action(t1)
	})
	if t1 != nil {
		t1.close()
	}
}

// Defer registers a cleanup for when this test scope ends. Cleanups run in
// reverse order, whether the test passed, failed, or panicked.
func (t *T) Defer(cleanup func()) {
	t.cleanups = append(t.cleanups, cleanup)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// DebugLogger returns the test's debug logger.
func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// RequireCapability skips this test if the service did not declare that it supports the
// specified capability.
func (t *T) RequireCapability(capability string) {
	if !t.env.harness.ServiceHasCapability(capability) {
		t.context.SkipWithReason(fmt.Sprintf("service does not have capability %q", capability))
	}
}

// Client returns an unauthenticated client for the service under test.
func (t *T) Client() *client.APIClient {
	return t.client
}

// ClientFor returns a client that sends the given credentials with every request.
func (t *T) ClientFor(auth client.Authenticator) *client.APIClient {
	return t.client.WithAuth(auth)
}

// Harness returns the session's test harness, for tests that register mock endpoints.
func (t *T) Harness() *framework.TestHarness {
	return t.env.harness
}

// EnsureTestUser makes sure the seed account exists, recreating it if the
// database was just reset. Safe to call more than once per test.
func (t *T) EnsureTestUser() {
	resp, err := t.client.GetUser(TestUserEmail)
	require.NoError(t, err)
	if resp.Status == http.StatusOK {
		return
	}
	require.Equal(t, http.StatusNotFound, resp.Status, "unexpected status while checking for seed user")

	resp, err = t.client.CreateUser(servicedef.CreateUserParams{
		Email:    TestUserEmail,
		Password: TestUserPassword,
	})
	require.NoError(t, err)
	if resp.Status != http.StatusCreated && resp.Status != http.StatusConflict {
		require.Fail(t, "could not create seed user", "got status %d", resp.Status)
	}
}

// BearerToken logs in as the seed account and returns the issued token. The
// login happens once per session; later calls reuse the same token, which
// stays valid because tokens are self-contained and the seed account is
// recreated after every database reset.
func (t *T) BearerToken() string {
	if !t.env.haveToken {
		t.EnsureTestUser()
		resp, err := t.client.Login(TestUserEmail, TestUserPassword)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status, "login for bearer token failed")

		var rep servicedef.TokenRep
		require.NoError(t, resp.JSON(&rep))
		require.NotEmpty(t, rep.AccessToken, "login returned an empty token")
		t.env.bearerToken = rep.AccessToken
		t.env.haveToken = true
	}
	return t.env.bearerToken
}

func (t *T) resetDatabase() {
	if !t.env.harness.OwnsService() {
		if !t.env.resetSkipped {
			t.env.resetSkipped = true
			t.Debug("not resetting database state: the service was already running before this session")
		}
		return
	}
	if t.env.resetter == nil {
		r, err := openDBResetter(t.env.harness.DatabasePath())
		require.NoError(t, err, "could not open the service database for resetting")
		t.env.resetter = r
	}
	require.NoError(t, t.env.resetter.Reset(), "could not reset the service database")
	t.Debug("database reset: deleted all users")
}
