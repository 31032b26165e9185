package middleware

import (
	"net/http"
	"strings"

	"essay-feed/helper"
	"essay-feed/logger"
	"essay-feed/models"
	"essay-feed/services"
	"essay-feed/session"

	"github.com/gin-gonic/gin"
)

var HTTPHelper = helper.NewHTTPHelper()

// LoadCurrentUser resolves the remember_token cookie, if any. It never aborts.
func LoadCurrentUser(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := session.RememberToken(c)
		if token != "" {
			user, err := authService.UserFromRememberToken(c.Request.Context(), token)
			if err != nil {
				logger.Warningf("resolve remember token failed: %v", err)
			}
			if user != nil {
				session.SetCurrentUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireSignedIn sends browsers without a session to the login page.
func RequireSignedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !session.IsSignedIn(c) {
			_ = session.AddFlash(c, session.FlashError, "Please sign in.")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthMiddleware guards the JSON API. A Bearer token wins over the cookie.
func AuthMiddleware(authService services.AuthService, userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if session.IsSignedIn(c) {
				c.Next()
				return
			}
			user, err := authService.UserFromRememberToken(c.Request.Context(), session.RememberToken(c))
			if err != nil || user == nil {
				HTTPHelper.SendUnauthorizedError(c, "Authorization required", HTTPHelper.EmptyJsonMap())
				c.Abort()
				return
			}
			session.SetCurrentUser(c, user)
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			HTTPHelper.SendUnauthorizedError(c, "Bearer token required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		claims, err := authService.ParseToken(tokenString)
		if err != nil {
			HTTPHelper.SendUnauthorizedError(c, "Invalid token: "+err.Error(), HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		// Reload so admin changes and deletions apply before the token expires.
		user, err := userService.GetByID(claims.UserID)
		if err != nil {
			HTTPHelper.SendUnauthorizedError(c, "User no longer exists", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		session.SetCurrentUser(c, user)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := session.CurrentUser(c)
		if user == nil {
			HTTPHelper.SendUnauthorizedError(c, "Authorization required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		if !user.Admin {
			HTTPHelper.SendForbiddenError(c, "Insufficient permissions", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		c.Next()
	}
}

// MustCurrentUser is for handlers mounted behind AuthMiddleware or RequireSignedIn.
func MustCurrentUser(c *gin.Context) *models.User {
	user := session.CurrentUser(c)
	if user == nil {
		panic("middleware: no current user, handler mounted without auth middleware")
	}
	return user
}
