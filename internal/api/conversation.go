package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) getUserConversations(c *gin.Context) {
	userID := c.Param("userid")
	if !requireSelf(c, userID) {
		return
	}

	convs, err := h.service.GetUserConversations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, convs)
}

func (h *handler) getUserConversation(c *gin.Context) {
	userID := c.Param("userid")
	if !requireSelf(c, userID) {
		return
	}

	conv, err := h.service.GetUserConversation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

type createConversationRequest struct {
	Name     *string  `json:"name" binding:"omitempty,max=30"`
	ImgUrl   *string  `json:"imgUrl" binding:"omitempty,max=500"`
	UserIDs  []string `json:"userIds" binding:"required"`
	AdminIDs []string `json:"adminIds"`
}

func (h *handler) createConversation(c *gin.Context) {
	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	conv, err := h.service.CreateConversation(
		c.Request.Context(),
		MustUserID(c),
		req.Name,
		req.ImgUrl,
		req.UserIDs,
		req.AdminIDs,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}

type updateConversationInfoRequest struct {
	Name   *string `json:"name" binding:"omitempty,max=30"`
	ImgUrl *string `json:"imgUrl" binding:"omitempty,max=500"`
}

func (h *handler) updateConversationInfo(c *gin.Context) {
	var req updateConversationInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	conv, err := h.service.UpdateConversationInfo(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		req.Name,
		req.ImgUrl,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) uploadConversationAvatar(c *gin.Context) {
	data, err := formImage(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	conv, err := h.service.UploadConversationAvatar(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		data,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) deleteConversation(c *gin.Context) {
	err := h.service.DeleteConversation(c.Request.Context(), MustUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) leaveConversation(c *gin.Context) {
	conv, err := h.service.LeaveConversation(c.Request.Context(), MustUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) addMember(c *gin.Context) {
	conv, err := h.service.AddMember(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		c.Param("userid"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) removeMember(c *gin.Context) {
	conv, err := h.service.RemoveMember(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		c.Param("userid"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) grantAdmin(c *gin.Context) {
	conv, err := h.service.GrantAdmin(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		c.Param("userid"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

func (h *handler) revokeAdmin(c *gin.Context) {
	conv, err := h.service.RevokeAdmin(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		c.Param("userid"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}
