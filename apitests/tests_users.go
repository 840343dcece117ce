package apitests

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

// uniqueEmail generates an address that no other test can have used, which is
// what keeps these tests order-independent even when the database is not
// resettable (external services).
func uniqueEmail(domain string) string {
	return fmt.Sprintf("%s@%s", uuid.New().String(), domain)
}

func DoUserTests(t *T) {
	t.Run("create and fetch user", func(t *T) {
		email := uniqueEmail("example.com")

		resp, err := t.Client().CreateUser(servicedef.CreateUserParams{Email: email, Password: "secret"})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.Status, "creating a new user should return 201")

		var created servicedef.UserRep
		require.NoError(t, resp.JSON(&created))
		assert.NotEmpty(t, created.ID, "created user should have an ID")
		assert.Equal(t, email, created.Email)

		resp, err = t.Client().GetUser(email)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status, "fetching the created user should return 200")

		var fetched servicedef.UserRep
		require.NoError(t, resp.JSON(&fetched))
		assert.Equal(t, created, fetched, "fetched user should match the created one")
	})

	t.Run("duplicate email returns 409", func(t *T) {
		email := uniqueEmail("dup.com")

		resp, err := t.Client().CreateUser(servicedef.CreateUserParams{Email: email, Password: "x"})
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.Status)

		resp, err = t.Client().CreateUser(servicedef.CreateUserParams{Email: email, Password: "x"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.Status, "second registration of the same email should return 409")
	})

	t.Run("invalid email returns 422", func(t *T) {
		for _, invalidEmail := range []string{"plain", "missing-at.com", "invalid@.com", ""} {
			t.Run(fmt.Sprintf("%q", invalidEmail), func(t *T) {
				resp, err := t.Client().CreateUser(servicedef.CreateUserParams{Email: invalidEmail, Password: "x"})
				require.NoError(t, err)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
			})
		}
	})

	t.Run("unknown email returns 404", func(t *T) {
		resp, err := t.Client().GetUser(uniqueEmail("nowhere.com"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}
