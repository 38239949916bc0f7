package api

import (
	"io"
	"net/http"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required,min=3,max=30"`
	LastName  string `json:"lastName" binding:"omitempty,max=30"`
	Email     string `json:"email" binding:"required,email,min=3,max=100"`
	Password  string `json:"password" binding:"required,min=6,max=100"`
	ImgUrl    string `json:"imgUrl" binding:"omitempty,max=500"`
	About     string `json:"about" binding:"omitempty,max=120"`
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		ImgUrl:    req.ImgUrl,
		About:     req.About,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *handler) getUsers(c *gin.Context) {
	users, err := h.service.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *handler) getUsersByName(c *gin.Context) {
	users, err := h.service.GetUsersByName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type updateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=3,max=30"`
	LastName  *string `json:"lastName" binding:"omitempty,max=30"`
	Email     *string `json:"email" binding:"omitempty,email,min=3,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=6,max=100"`
	ImgUrl    *string `json:"imgUrl" binding:"omitempty,max=500"`
	About     *string `json:"about" binding:"omitempty,max=120"`
}

func (h *handler) updateUser(c *gin.Context) {
	id := c.Param("id")
	if !requireSelf(c, id) {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.UpdateUser(c.Request.Context(), id, models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		ImgUrl:    req.ImgUrl,
		About:     req.About,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *handler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if !requireSelf(c, id) {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) uploadUserAvatar(c *gin.Context) {
	id := c.Param("id")
	if !requireSelf(c, id) {
		return
	}

	data, err := formImage(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.service.UploadUserAvatar(c.Request.Context(), id, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func formImage(c *gin.Context) ([]byte, error) {
	file, err := c.FormFile("avatar")
	if err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
