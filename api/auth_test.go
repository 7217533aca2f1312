package api

import (
	"net/http"
	"testing"
	"time"

	"asterank/asteroid-api/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	a, _ := newTestAPI(t)

	tests := []struct {
		name string
		body gin.H
		want string // field expected in the errors map
	}{
		{"missing name", gin.H{"email": "a@x.com", "password": "password1", "password_confirmation": "password1"}, "name"},
		{"bad email", gin.H{"name": "Ada", "email": "not-an-email", "password": "password1", "password_confirmation": "password1"}, "email"},
		{"short password", gin.H{"name": "Ada", "email": "a@x.com", "password": "short", "password_confirmation": "short"}, "password"},
		{"confirmation mismatch", gin.H{"name": "Ada", "email": "a@x.com", "password": "password1", "password_confirmation": "password2"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doJSON(t, a, http.MethodPost, "/api/register", "", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, code)
			require.Equal(t, false, resp["success"])

			errs := resp["errors"].(map[string]any)
			assert.Contains(t, errs, tt.want)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _ := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodPost, "/api/register", "", gin.H{
		"name":                  "Other",
		"email":                 "ada@x.com",
		"password":              "password1",
		"password_confirmation": "password1",
	})

	require.Equal(t, http.StatusUnprocessableEntity, code)
	errs := resp["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
}

func TestRegisterThenLogin(t *testing.T) {
	a, _ := newTestAPI(t)

	_, t1 := registerUser(t, a, "Ada", "ada@x.com", "password1")
	require.NotEmpty(t, t1)

	code, resp := doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email":    "ada@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["success"])
	require.Equal(t, false, resp["remember_me"])

	t2 := resp["token"].(string)
	assert.NotEmpty(t, t2)
	assert.NotEqual(t, t1, t2)
}

func TestLoginInvalidCredentials(t *testing.T) {
	a, _ := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	// Wrong password and unknown email must be indistinguishable
	for _, body := range []gin.H{
		{"email": "ada@x.com", "password": "wrongpass1"},
		{"email": "nobody@x.com", "password": "password1"},
	} {
		code, resp := doJSON(t, a, http.MethodPost, "/api/login", "", body)

		require.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "Invalid credentials", resp["message"])
	}
}

func TestLoginRotatesTokens(t *testing.T) {
	a, _ := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, code)
	t1 := resp["token"].(string)

	code, _ = doJSON(t, a, http.MethodGet, "/api/user", t1, nil)
	require.Equal(t, http.StatusOK, code)

	code, resp = doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, code)
	t2 := resp["token"].(string)
	require.NotEqual(t, t1, t2)

	// The first session died with the second login
	code, resp = doJSON(t, a, http.MethodGet, "/api/user", t1, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthenticated", resp["message"])

	code, _ = doJSON(t, a, http.MethodGet, "/api/user", t2, nil)
	assert.Equal(t, http.StatusOK, code)

	// Exactly one live token row
	var count int64
	require.NoError(t, a.DB.Model(model.AuthToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginTokenExpiry(t *testing.T) {
	a, _ := newTestAPI(t)

	userID, _ := registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, code)

	var token model.AuthToken
	require.NoError(t, a.DB.Where("user_id = ?", userID).First(&token).Error)
	require.NotNil(t, token.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *token.ExpiresAt, time.Minute)

	code, resp := doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "password1", "remember_me": true,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["remember_me"])

	// Fresh destination, reusing the old one would fold its primary key
	// into the query and miss the rotated row
	token = model.AuthToken{}
	require.NoError(t, a.DB.Where("user_id = ?", userID).First(&token).Error)
	require.NotNil(t, token.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *token.ExpiresAt, time.Minute)
}

func TestExpiredTokenRejected(t *testing.T) {
	a, _ := newTestAPI(t)

	userID, token := registerUser(t, a, "Ada", "ada@x.com", "password1")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, a.DB.Model(model.AuthToken{}).
		Where("user_id = ?", userID).
		Update("expires_at", &past).
		Error)

	code, resp := doJSON(t, a, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthenticated", resp["message"])

	// The dead row got removed on the failed request
	var count int64
	require.NoError(t, a.DB.Model(model.AuthToken{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLogout(t *testing.T) {
	a, _ := newTestAPI(t)

	_, token := registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Logged out", resp["message"])

	code, _ = doJSON(t, a, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestValidate(t *testing.T) {
	a, _ := newTestAPI(t)

	_, token := registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodHead, "/api/validate", token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, a, http.MethodHead, "/api/validate", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUserFetch(t *testing.T) {
	a, _ := newTestAPI(t)

	_, token := registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, code)

	user := resp["user"].(map[string]any)
	assert.Equal(t, "Ada", user["name"])
	assert.Equal(t, "ada@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	// No token at all
	code, resp = doJSON(t, a, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthenticated", resp["message"])
}
