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

type EssayHandler struct {
	essayService services.EssayService
	Helper       *helper.HTTPHelper
}

func NewEssayHandler(essayService services.EssayService, h *helper.HTTPHelper) *EssayHandler {
	return &EssayHandler{essayService: essayService, Helper: h}
}

func (h *EssayHandler) CreateEssay(c *gin.Context) {
	var req models.CreateEssayRequest
	if !h.Helper.BindAndValidate(c, &req) {
		return
	}

	essay, err := h.essayService.Create(middleware.MustCurrentUser(c).ID, req)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Essay created", essay)
}

func (h *EssayHandler) GetEssay(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	essay, err := h.essayService.GetByID(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Essay loaded", essay)
}

func (h *EssayHandler) DeleteEssay(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	if err := h.essayService.Delete(middleware.MustCurrentUser(c), id); err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Essay deleted", h.Helper.EmptyJsonMap())
}

func (h *EssayHandler) GetFeed(c *gin.Context) {
	var params models.FeedParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}
	params.Normalize()

	essays, total, err := h.essayService.Feed(middleware.MustCurrentUser(c).ID, params)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}

	h.Helper.SendSuccess(c, "Feed loaded", gin.H{
		"essays": essays,
		"paging": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

// FeedPage renders the signed in home page.
func (h *EssayHandler) FeedPage(c *gin.Context) {
	h.renderFeed(c, http.StatusOK, nil)
}

// CreateFromForm posts an essay from the feed page form.
func (h *EssayHandler) CreateFromForm(c *gin.Context) {
	var req models.CreateEssayRequest
	_ = c.ShouldBind(&req)

	if _, err := h.essayService.Create(middleware.MustCurrentUser(c).ID, req); err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			h.renderFeed(c, http.StatusUnprocessableEntity, verrs)
			return
		}
		logger.Errorf("create essay failed: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	_ = session.AddFlash(c, session.FlashSuccess, "Essay created!")
	c.Redirect(http.StatusSeeOther, "/feed")
}

func (h *EssayHandler) renderFeed(c *gin.Context, status int, errs models.ValidationErrors) {
	params := models.FeedParams{Page: 1, Limit: models.DefaultFeedLimit}
	essays, _, err := h.essayService.Feed(middleware.MustCurrentUser(c).ID, params)
	if err != nil {
		logger.Errorf("load feed failed: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	renderPage(c, status, "feed.tmpl", "Home", gin.H{
		"Essays": essays,
		"Errors": errs,
	})
}
