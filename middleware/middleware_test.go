package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"essay-feed/models"
	"essay-feed/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(user *models.User, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != nil {
			session.SetCurrentUser(c, user)
		}
		c.Next()
	})
	r.Use(handlers...)
	r.Any("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine(nil, RequestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name   string
		user   *models.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"regular user", &models.User{ID: 1}, http.StatusForbidden},
		{"admin", &models.User{ID: 2, Admin: true}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newEngine(tc.user, RequireAdmin()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(nil, CORS()).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMustCurrentUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Panics(t, func() { MustCurrentUser(c) })

	session.SetCurrentUser(c, &models.User{ID: 7})
	assert.Equal(t, uint(7), MustCurrentUser(c).ID)
}
