package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type messageRequest struct {
	Text   *string `json:"text" binding:"omitempty,max=10000"`
	ImgUrl *string `json:"imgUrl" binding:"omitempty,max=500"`
}

func (h *handler) createMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.service.CreateMessage(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		req.Text,
		req.ImgUrl,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (h *handler) editMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.service.EditMessage(
		c.Request.Context(),
		MustUserID(c),
		c.Param("id"),
		req.Text,
		req.ImgUrl,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

func (h *handler) deleteMessage(c *gin.Context) {
	msg, err := h.service.DeleteMessage(c.Request.Context(), MustUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

type markReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required"`
}

func (h *handler) markMessagesAsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msgs, err := h.service.MarkMessagesAsRead(c.Request.Context(), MustUserID(c), req.MessageIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}
