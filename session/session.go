// Package session keeps per-request sign-in state: the remember_token
// cookie, the resolved current user and one-shot flash messages.
package session

import (
	"essay-feed/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	RememberTokenCookie = "remember_token"
	StoreName           = "essay_feed_session"

	currentUserKey = "current_user"

	// 20 years, the cookie is meant to be permanent.
	rememberMaxAge = 20 * 365 * 24 * 60 * 60
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Middleware installs the cookie backed store used for flash messages.
func Middleware(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
	})
	return sessions.Sessions(StoreName, store)
}

func SetRememberToken(c *gin.Context, token string, secure bool) {
	c.SetCookie(RememberTokenCookie, token, rememberMaxAge, "/", "", secure, true)
}

func ClearRememberToken(c *gin.Context) {
	c.SetCookie(RememberTokenCookie, "", -1, "/", "", false, true)
}

// RememberToken returns the cookie value or "" when absent.
func RememberToken(c *gin.Context) string {
	token, err := c.Cookie(RememberTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
	c.Set("user_id", user.ID)
}

func CurrentUser(c *gin.Context) *models.User {
	if obj, ok := c.Get(currentUserKey); ok {
		if user, ok := obj.(*models.User); ok {
			return user
		}
	}
	return nil
}

func IsSignedIn(c *gin.Context) bool {
	return CurrentUser(c) != nil
}

func AddFlash(c *gin.Context, kind, message string) error {
	s := sessions.Default(c)
	s.AddFlash(message, kind)
	return s.Save()
}

// Flashes pops every pending message of the given kind.
func Flashes(c *gin.Context, kind string) []string {
	s := sessions.Default(c)
	raw := s.Flashes(kind)
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save()

	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
