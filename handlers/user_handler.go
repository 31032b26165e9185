package handlers

import (
	"errors"
	"net/http"

	"essay-feed/helper"
	"essay-feed/logger"
	"essay-feed/middleware"
	"essay-feed/models"
	"essay-feed/services"
	"essay-feed/session"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  services.UserService
	essayService services.EssayService
	Helper       *helper.HTTPHelper
	secureCookie bool
}

func NewUserHandler(userService services.UserService, essayService services.EssayService, h *helper.HTTPHelper, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		essayService: essayService,
		Helper:       h,
		secureCookie: secureCookie,
	}
}

// New renders the signup form.
func (h *UserHandler) New(c *gin.Context) {
	renderPage(c, http.StatusOK, "signup.tmpl", "Sign up", gin.H{"Form": models.SignupRequest{}})
}

// Create handles the signup form and signs the new user in.
func (h *UserHandler) Create(c *gin.Context) {
	var form models.SignupRequest
	_ = c.ShouldBind(&form)

	user := form.ToUser()
	if err := h.userService.Create(user); err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			form.Password, form.PasswordConfirmation = "", ""
			renderPage(c, http.StatusUnprocessableEntity, "signup.tmpl", "Sign up", gin.H{
				"Form":   form,
				"Errors": verrs,
			})
			return
		}
		logger.Errorf("signup failed: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	signIn(c, user, h.secureCookie)
	_ = session.AddFlash(c, session.FlashSuccess, "Welcome to the Essay Feed!")
	c.Redirect(http.StatusSeeOther, "/feed")
}

func (h *UserHandler) Show(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "User loaded", user)
}

func (h *UserHandler) Essays(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	essays, err := h.essayService.ListByUser(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Essays loaded", essays)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}
	if middleware.MustCurrentUser(c).ID != id {
		h.Helper.SendForbiddenError(c, "Insufficient permissions", h.Helper.EmptyJsonMap())
		return
	}

	var req models.ChangePasswordRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	user, err := h.userService.ChangePassword(c.Request.Context(), id, req.Password, req.PasswordConfirmation)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	// The token rotated, keep this browser signed in.
	if session.RememberToken(c) != "" {
		session.SetRememberToken(c, user.RememberToken, h.secureCookie)
	}
	h.Helper.SendSuccess(c, "Password updated", gin.H{"user": user, "remember_token": user.RememberToken})
}

func (h *UserHandler) ToggleAdmin(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	user, err := h.userService.ToggleAdmin(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Admin toggled", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	actor := middleware.MustCurrentUser(c)
	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	if actor.ID == id {
		session.ClearRememberToken(c)
	}
	h.Helper.SendSuccess(c, "User deleted", h.Helper.EmptyJsonMap())
}
