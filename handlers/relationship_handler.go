package handlers

import (
	"essay-feed/helper"
	"essay-feed/middleware"
	"essay-feed/services"

	"github.com/gin-gonic/gin"
)

type RelationshipHandler struct {
	relService services.RelationshipService
	Helper     *helper.HTTPHelper
}

func NewRelationshipHandler(relService services.RelationshipService, h *helper.HTTPHelper) *RelationshipHandler {
	return &RelationshipHandler{relService: relService, Helper: h}
}

func (h *RelationshipHandler) Follow(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	if err := h.relService.Follow(middleware.MustCurrentUser(c).ID, id); err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Followed", gin.H{"following": true})
}

func (h *RelationshipHandler) Unfollow(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	if err := h.relService.Unfollow(middleware.MustCurrentUser(c).ID, id); err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Unfollowed", gin.H{"following": false})
}

func (h *RelationshipHandler) Following(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	users, err := h.relService.Following(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Following loaded", users)
}

func (h *RelationshipHandler) Followers(c *gin.Context) {
	id, ok := parseID(h.Helper, c, "id")
	if !ok {
		return
	}

	users, err := h.relService.Followers(id)
	if err != nil {
		sendServiceError(h.Helper, c, err)
		return
	}
	h.Helper.SendSuccess(c, "Followers loaded", users)
}
