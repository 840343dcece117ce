package apitests

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usersdemo/api-contract-tests/servicedef"
)

// mockUserDetails registers a mock endpoint that serves the canned
// user-details dataset for the duration of the test, and returns its base URL.
// This resource is provided by the harness, not the service under test, which
// is why these tests do not require any service capability.
func mockUserDetails(t *T) string {
	endpoint := t.Harness().NewMockEndpoint("user details resource", userDetailsHandler(), t.DebugLogger())
	t.Defer(endpoint.Close)
	return endpoint.BaseURL()
}

func userDetailsHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/user/details", func(w http.ResponseWriter, req *http.Request) {
		writeMockJSON(w, http.StatusOK, servicedef.UserDetailsFixture)
	})
	r.Get("/user/details/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		if item := servicedef.UserDetailByID(id); item != nil {
			writeMockJSON(w, http.StatusOK, item)
			return
		}
		writeMockJSON(w, http.StatusNotFound, servicedef.ErrorRep{
			Error: fmt.Sprintf("No such item with provided id: '%s'.", id),
		})
	})
	return r
}

func writeMockJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func DoUserDetailsTests(t *T) {
	t.Run("list returns all user details", func(t *T) {
		base := mockUserDetails(t)

		resp, err := t.Client().Get(base + "/user/details")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status)

		var items []servicedef.UserDetail
		require.NoError(t, resp.JSON(&items))
		assert.Equal(t, servicedef.UserDetailsFixture, items)
	})

	for _, id := range []string{"1", "2", "3"} {
		t.Run(fmt.Sprintf("get user detail by id %s", id), func(t *T) {
			base := mockUserDetails(t)

			resp, err := t.Client().Get(fmt.Sprintf("%s/user/details/%s", base, id))
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.Status)

			var item servicedef.UserDetail
			require.NoError(t, resp.JSON(&item))
			expected := servicedef.UserDetailByID(id)
			require.NotNil(t, expected, "fixture does not contain id %s", id)
			assert.Equal(t, *expected, item)
		})
	}

	t.Run("unknown id returns 404 with error body", func(t *T) {
		base := mockUserDetails(t)

		resp, err := t.Client().Get(base + "/user/details/999")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.Status)

		var errRep servicedef.ErrorRep
		require.NoError(t, resp.JSON(&errRep))
		assert.Equal(t, "No such item with provided id: '999'.", errRep.Error)
	})
}
