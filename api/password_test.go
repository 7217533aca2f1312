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

func TestForgotPasswordUnknownEmail(t *testing.T) {
	a, mailer := newTestAPI(t)

	code, resp := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{
		"email": "nobody@x.com",
	})

	require.Equal(t, http.StatusUnprocessableEntity, code)
	errs := resp["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Empty(t, mailer.Sent)
}

func TestForgotPasswordSendsCode(t *testing.T) {
	a, mailer := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{
		"email": "ada@x.com",
	})

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Password reset code sent to your email", resp["message"])

	require.Len(t, mailer.Sent, 1)
	assert.Equal(t, "ada@x.com", mailer.Sent[0].To)
	assert.Equal(t, "Ada", mailer.Sent[0].Name)
	assert.Len(t, mailer.Sent[0].Code, 6)

	// The code itself never lands in the database
	var reset model.PasswordReset
	require.NoError(t, a.DB.Where("email = ?", "ada@x.com").First(&reset).Error)
	assert.NotEqual(t, mailer.Sent[0].Code, reset.CodeHash)
	assert.Contains(t, reset.CodeHash, "$argon2id$")
}

func TestForgotPasswordUpsertsRequest(t *testing.T) {
	a, mailer := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)
	first := mailer.lastCode(t)

	code, _ = doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)
	second := mailer.lastCode(t)

	var count int64
	require.NoError(t, a.DB.Model(model.PasswordReset{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The superseded code no longer resets anything
	if first != second {
		rcode, resp := doJSON(t, a, http.MethodPost, "/api/reset-password", "", gin.H{
			"email":                 "ada@x.com",
			"code":                  first,
			"password":              "newpassword1",
			"password_confirmation": "newpassword1",
		})
		assert.Equal(t, http.StatusBadRequest, rcode)
		assert.Equal(t, "Invalid reset code", resp["message"])
	}
}

func TestForgotPasswordMailFailure(t *testing.T) {
	a, mailer := newTestAPI(t)
	mailer.Fail = true

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, resp := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{
		"email": "ada@x.com",
	})

	require.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Failed to send email. Please try again later.", resp["message"])

	// app.env is production in tests, the raw error stays hidden
	assert.NotContains(t, resp, "error")
}

func TestResetPasswordFlow(t *testing.T) {
	a, mailer := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)

	code, resp := doJSON(t, a, http.MethodPost, "/api/reset-password", "", gin.H{
		"email":                 "ada@x.com",
		"code":                  mailer.lastCode(t),
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Password has been reset successfully", resp["message"])

	// Old password is gone
	code, _ = doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "password1",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	// New one works
	code, _ = doJSON(t, a, http.MethodPost, "/api/login", "", gin.H{
		"email": "ada@x.com", "password": "newpassword1",
	})
	assert.Equal(t, http.StatusOK, code)

	// Request is consumed, the same code can't fire twice
	code, resp = doJSON(t, a, http.MethodPost, "/api/reset-password", "", gin.H{
		"email":                 "ada@x.com",
		"code":                  mailer.lastCode(t),
		"password":              "anotherpass1",
		"password_confirmation": "anotherpass1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid reset code", resp["message"])
}

func TestResetPasswordWrongCode(t *testing.T) {
	a, mailer := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "000001"
	}

	code, resp := doJSON(t, a, http.MethodPost, "/api/reset-password", "", gin.H{
		"email":                 "ada@x.com",
		"code":                  wrong,
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid reset code", resp["message"])
}

func TestResetPasswordExpiredCode(t *testing.T) {
	a, mailer := newTestAPI(t)

	registerUser(t, a, "Ada", "ada@x.com", "password1")

	code, _ := doJSON(t, a, http.MethodPost, "/api/forgot-password", "", gin.H{"email": "ada@x.com"})
	require.Equal(t, http.StatusOK, code)

	// Age the request past the 60 minute window
	stale := time.Now().Add(-61 * time.Minute)
	require.NoError(t, a.DB.Model(model.PasswordReset{}).
		Where("email = ?", "ada@x.com").
		Update("created_at", stale).
		Error)

	body := gin.H{
		"email":                 "ada@x.com",
		"code":                  mailer.lastCode(t),
		"password":              "newpassword1",
		"password_confirmation": "newpassword1",
	}

	code, resp := doJSON(t, a, http.MethodPost, "/api/reset-password", "", body)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Reset code has expired", resp["message"])

	// The stale row was deleted, a retry reports invalid instead
	code, resp = doJSON(t, a, http.MethodPost, "/api/reset-password", "", body)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid reset code", resp["message"])
}

func TestResetPasswordValidation(t *testing.T) {
	a, _ := newTestAPI(t)

	code, resp := doJSON(t, a, http.MethodPost, "/api/reset-password", "", gin.H{
		"email":                 "ada@x.com",
		"code":                  "12345", // not 6 chars
		"password":              "short",
		"password_confirmation": "short",
	})

	require.Equal(t, http.StatusUnprocessableEntity, code)
	errs := resp["errors"].(map[string]any)
	assert.Contains(t, errs, "code")
	assert.Contains(t, errs, "password")
}
