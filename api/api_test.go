package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"asterank/asteroid-api/middleware"
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

type sentMail struct {
	To   string
	Name string
	Code string
}

// stubMailer records reset codes instead of dialing SMTP so tests can
// feed the real code back into reset-password.
type stubMailer struct {
	Sent []sentMail
	Fail bool
}

func (s *stubMailer) SendResetCode(to, name, code string) error {
	if s.Fail {
		return fmt.Errorf("dial tcp: connection refused")
	}

	s.Sent = append(s.Sent, sentMail{To: to, Name: name, Code: code})
	return nil
}

func (s *stubMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.Sent)
	return s.Sent[len(s.Sent)-1].Code
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache DB so all pooled connections see the same
	// data, unique per test to avoid cross-test bleed
	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", testDBSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn))
	require.NoError(t, err)

	err = db.AutoMigrate(model.User{}, model.AuthToken{}, model.PasswordReset{}, model.Favorite{})
	require.NoError(t, err)

	return db
}

func newTestAPI(t *testing.T) (*API, *stubMailer) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("app.env", "production")
	viper.Set("auth.token_ttl_hours", 24)
	viper.Set("auth.remember_ttl_days", 30)
	viper.Set("auth.reset_code_ttl_minutes", 60)
	viper.Set("asterank.default_target", "J99TS7A")
	viper.Set("asterank.cache_seconds", 0)
	viper.Set("rate_limit.enabled", false)

	mailer := &stubMailer{}

	router := gin.New()
	router.Use(middleware.NewRequestIDMiddleware())

	a := &API{
		DB:     newTestDB(t),
		Router: router,
		Argon:  security.New(),
		Mailer: mailer,
		HTTP:   &http.Client{Timeout: 5 * time.Second},
	}
	a.registerRoutes()

	return a, mailer
}

// doJSON fires a request at the test router and decodes the JSON reply.
func doJSON(t *testing.T, a *API, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reqBody *bytes.Buffer

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	resp := map[string]any{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w.Code, resp
}

func registerUser(t *testing.T, a *API, name, email, password string) (userID, token string) {
	t.Helper()

	code, resp := doJSON(t, a, http.MethodPost, "/api/register", "", gin.H{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, resp["success"])

	user := resp["user"].(map[string]any)
	return user["id"].(string), resp["token"].(string)
}
