package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signupToken registers a fresh user and returns their access token.
func signupToken(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	body := env.signup(t, email, "correct horse battery")
	access, _ := tokensFrom(t, body)
	return access
}

func createItem(t *testing.T, env *testEnv, access, title string) map[string]interface{} {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/items", access, map[string]string{
		"title":       title,
		"description": "a thing",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)
}

func TestItemsCreate(t *testing.T) {
	t.Run("OwnerComesFromToken", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		userID, err := env.issuer.ValidateAccessToken(access)
		require.NoError(t, err)

		rec := env.do(t, http.MethodPost, "/items", access, map[string]string{
			"title": "notebook",
			"owner": "00000000-0000-0000-0000-000000000001",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		item := decodeBody(t, rec)
		assert.Equal(t, userID, item["owner"])
		assert.Equal(t, "notebook", item["title"])
		assert.Equal(t, true, item["is_active"])
	})

	t.Run("TitleRequired", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")

		rec := env.do(t, http.MethodPost, "/items", access, map[string]string{
			"description": "no title",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeBody(t, rec)["errors"].(map[string]interface{})
		assert.Contains(t, fields, "title")
	})

	t.Run("RequiresAuthentication", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/items", "", map[string]string{"title": "x"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestItemsList(t *testing.T) {
	t.Run("ReturnsOnlyCallersItems", func(t *testing.T) {
		env := newTestEnv(t)
		alice := signupToken(t, env, "alice@example.com")
		bob := signupToken(t, env, "bob@example.com")

		createItem(t, env, alice, "alice item")
		createItem(t, env, bob, "bob item")

		rec := env.do(t, http.MethodGet, "/items", alice, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		items := decodeBody(t, rec)["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "alice item", items[0].(map[string]interface{})["title"])
	})

	t.Run("EmptyListIsAnEmptyArray", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")

		rec := env.do(t, http.MethodGet, "/items", access, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items, ok := decodeBody(t, rec)["items"].([]interface{})
		require.True(t, ok, "items must be an array, body: %s", rec.Body.String())
		assert.Empty(t, items)
	})
}

func TestItemsGet(t *testing.T) {
	t.Run("OwnItem", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		created := createItem(t, env, access, "notebook")

		rec := env.do(t, http.MethodGet, "/items/"+created["id"].(string), access, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "notebook", decodeBody(t, rec)["title"])
	})

	t.Run("ForeignItemReadsAsNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		alice := signupToken(t, env, "alice@example.com")
		bob := signupToken(t, env, "bob@example.com")
		created := createItem(t, env, alice, "alice item")

		rec := env.do(t, http.MethodGet, "/items/"+created["id"].(string), bob, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("NonUUIDReadsAsNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")

		rec := env.do(t, http.MethodGet, "/items/not-a-uuid", access, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemsUpdate(t *testing.T) {
	t.Run("PatchPartial", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		created := createItem(t, env, access, "notebook")

		rec := env.do(t, http.MethodPatch, "/items/"+created["id"].(string), access, map[string]string{
			"description": "updated",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decodeBody(t, rec)
		assert.Equal(t, "notebook", updated["title"])
		assert.Equal(t, "updated", updated["description"])
	})

	t.Run("BlankTitleRejected", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		created := createItem(t, env, access, "notebook")
		id := created["id"].(string)

		for _, method := range []string{http.MethodPatch, http.MethodPut} {
			rec := env.do(t, method, "/items/"+id, access, map[string]string{
				"title": "",
			})
			require.Equal(t, http.StatusBadRequest, rec.Code, method)
			fields := decodeBody(t, rec)["errors"].(map[string]interface{})
			assert.Contains(t, fields, "title")
		}

		// The stored title survived both attempts.
		still := env.do(t, http.MethodGet, "/items/"+id, access, nil)
		require.Equal(t, http.StatusOK, still.Code)
		assert.Equal(t, "notebook", decodeBody(t, still)["title"])
	})

	t.Run("PutRequiresTitle", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		created := createItem(t, env, access, "notebook")

		rec := env.do(t, http.MethodPut, "/items/"+created["id"].(string), access, map[string]string{
			"description": "updated",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeBody(t, rec)["errors"].(map[string]interface{})
		assert.Contains(t, fields, "title")
	})

	t.Run("ForeignItemReadsAsNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		alice := signupToken(t, env, "alice@example.com")
		bob := signupToken(t, env, "bob@example.com")
		created := createItem(t, env, alice, "alice item")

		rec := env.do(t, http.MethodPatch, "/items/"+created["id"].(string), bob, map[string]string{
			"title": "stolen",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestItemsDelete(t *testing.T) {
	t.Run("DeleteThenGone", func(t *testing.T) {
		env := newTestEnv(t)
		access := signupToken(t, env, "alice@example.com")
		created := createItem(t, env, access, "notebook")
		id := created["id"].(string)

		rec := env.do(t, http.MethodDelete, "/items/"+id, access, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		gone := env.do(t, http.MethodGet, "/items/"+id, access, nil)
		require.Equal(t, http.StatusNotFound, gone.Code)

		again := env.do(t, http.MethodDelete, "/items/"+id, access, nil)
		require.Equal(t, http.StatusNotFound, again.Code)
	})

	t.Run("ForeignItemReadsAsNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		alice := signupToken(t, env, "alice@example.com")
		bob := signupToken(t, env, "bob@example.com")
		created := createItem(t, env, alice, "alice item")

		rec := env.do(t, http.MethodDelete, "/items/"+created["id"].(string), bob, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		// Still present for its owner.
		still := env.do(t, http.MethodGet, "/items/"+created["id"].(string), alice, nil)
		require.Equal(t, http.StatusOK, still.Code)
	})
}
