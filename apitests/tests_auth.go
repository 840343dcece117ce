package apitests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/client"
	"github.com/usersdemo/api-contract-tests/servicedef"
)

func DoAuthenticationTests(t *T) {
	t.Run("protected endpoint", func(t *T) {
		RunWithAuthVariants(t, func(t *T, auth client.Authenticator) {
			resp, err := t.ClientFor(auth).GetProtected()
			require.NoError(t, err)

			if _, anonymous := auth.(client.Anonymous); anonymous {
				require.Equal(t, http.StatusUnauthorized, resp.Status, "anonymous request should be rejected")
				challenge := resp.Header.Get("WWW-Authenticate")
				assert.Contains(t, challenge, "Bearer", "401 should advertise bearer auth")
				assert.Contains(t, challenge, "Basic", "401 should advertise basic auth")
				return
			}

			require.Equal(t, http.StatusOK, resp.Status, "authenticated request should succeed")
			var greeting servicedef.GreetingRep
			require.NoError(t, resp.JSON(&greeting))
			assert.Equal(t, TestUserEmail, greeting.Hello, "greeting should name the authenticated user")
		})
	})

	t.Run("basic auth with wrong password fails", func(t *T) {
		t.EnsureTestUser()
		resp, err := t.ClientFor(client.BasicAuth{Username: TestUserEmail, Password: "WRONG"}).GetProtected()
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("bearer auth with wrong token fails", func(t *T) {
		resp, err := t.ClientFor(client.BearerToken{Token: "invalid_token"}).GetProtected()
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("login with wrong password fails", func(t *T) {
		t.EnsureTestUser()
		resp, err := t.Client().Login(TestUserEmail, "WRONG")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})
}
