// Package testhelper provides databases, factories and a sign-in helper for tests.
package testhelper

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"essay-feed/config"
	"essay-feed/helper"
	"essay-feed/models"
	"essay-feed/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultPassword = "foobar"

var sequence atomic.Int64

// NewDB opens a private in-memory sqlite database with the schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		GinMode:  "test",
	}
	db, err := config.OpenDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a persisted user with DefaultPassword. The returned
// user keeps the plaintext in Password so tests can sign in with it.
func CreateUser(t testing.TB, db *gorm.DB, opts ...func(*models.User)) *models.User {
	t.Helper()

	n := sequence.Add(1)
	user := &models.User{
		Name:  fmt.Sprintf("Person %d", n),
		Email: fmt.Sprintf("person-%d@example.com", n),
	}
	for _, opt := range opts {
		opt(user)
	}

	password := DefaultPassword
	if user.Password != "" {
		password = user.Password
	}

	digest, err := helper.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	token, err := helper.NewRememberToken()
	require.NoError(t, err)

	user.Email = models.NormalizeEmail(user.Email)
	user.PasswordDigest = digest
	user.RememberToken = token
	user.Password = ""
	user.PasswordConfirmation = ""
	require.NoError(t, db.Create(user).Error)

	user.Password = password
	return user
}

func AsAdmin(u *models.User) {
	u.Admin = true
}

// CreateEssay inserts an essay for user. A zero createdAt means now.
func CreateEssay(t testing.TB, db *gorm.DB, user *models.User, content string, createdAt time.Time) *models.Essay {
	t.Helper()

	essay := &models.Essay{UserID: user.ID, Content: content, CreatedAt: createdAt}
	require.NoError(t, db.Create(essay).Error)
	return essay
}

func Follow(t testing.TB, db *gorm.DB, follower, followed *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Relationship{FollowerID: follower.ID, FollowedID: followed.ID}).Error)
}

// SignIn drives the login page like a browser: it loads the form, submits
// the Email and Password fields and returns the remember_token cookie.
func SignIn(t testing.TB, handler http.Handler, email, password string) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `name="email"`)
	require.Contains(t, w.Body.String(), `name="password"`)

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code, "sign in failed: %s", w.Body.String())

	for _, c := range w.Result().Cookies() {
		if c.Name == session.RememberTokenCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("sign in did not set the %s cookie", session.RememberTokenCookie)
	return nil
}

// WithRememberToken signs req in directly, skipping the login form.
func WithRememberToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.RememberTokenCookie, Value: token})
	return req
}
