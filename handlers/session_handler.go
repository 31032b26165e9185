package handlers

import (
	"net/http"

	"essay-feed/logger"
	"essay-feed/models"
	"essay-feed/services"
	"essay-feed/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the browser sign in / sign out pages.
type SessionHandler struct {
	authService  services.AuthService
	secureCookie bool
}

func NewSessionHandler(authService services.AuthService, secureCookie bool) *SessionHandler {
	return &SessionHandler{authService: authService, secureCookie: secureCookie}
}

func (h *SessionHandler) New(c *gin.Context) {
	if session.IsSignedIn(c) {
		c.Redirect(http.StatusSeeOther, "/feed")
		return
	}
	renderPage(c, http.StatusOK, "login.tmpl", "Sign in", gin.H{"Email": ""})
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req models.LoginRequest
	_ = c.ShouldBind(&req)

	user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		logger.Errorf("authenticate failed: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		renderPage(c, http.StatusUnauthorized, "login.tmpl", "Sign in", gin.H{
			"Email":      req.Email,
			"FlashError": []string{services.ErrInvalidCredentials.Error()},
		})
		return
	}

	signIn(c, user, h.secureCookie)
	c.Redirect(http.StatusSeeOther, "/feed")
}

// Destroy signs out. It is reachable with GET and POST.
func (h *SessionHandler) Destroy(c *gin.Context) {
	if user := session.CurrentUser(c); user != nil {
		if err := h.authService.SignOut(c.Request.Context(), user); err != nil {
			logger.Errorf("sign out user %d failed: %v", user.ID, err)
		}
	}
	session.ClearRememberToken(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func signIn(c *gin.Context, user *models.User, secure bool) {
	session.SetRememberToken(c, user.RememberToken, secure)
	session.SetCurrentUser(c, user)
}

// renderPage fills in the layout fields shared by every page.
func renderPage(c *gin.Context, status int, name, title string, data gin.H) {
	data["Title"] = title
	data["CurrentUser"] = session.CurrentUser(c)
	if _, ok := data["FlashError"]; !ok {
		data["FlashError"] = session.Flashes(c, session.FlashError)
	}
	data["FlashSuccess"] = session.Flashes(c, session.FlashSuccess)
	c.HTML(status, name, data)
}
