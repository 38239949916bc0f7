// Package api is the HTTP surface of the messenger: route wiring,
// auth and rate-limit middleware and the JSON error contract.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/pkg/jwt"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Service interface {
	Register(ctx context.Context, user models.User) (models.User, string, error)
	Login(ctx context.Context, email, password string) (models.User, string, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUsers(ctx context.Context) ([]models.UserPublic, error)
	GetUsersByName(ctx context.Context, name string) ([]models.UserPublic, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, string, error)
	DeleteUser(ctx context.Context, id string) error
	UploadUserAvatar(ctx context.Context, id string, data []byte) (models.User, error)
	CreateConversation(
		ctx context.Context,
		creatorID string,
		name *string,
		imgUrl *string,
		userIDs []string,
		adminIDs []string,
	) (models.Conversation, error)
	GetUserConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	GetUserConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error)
	AddMember(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error)
	RemoveMember(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error)
	LeaveConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error)
	GrantAdmin(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error)
	RevokeAdmin(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error)
	UpdateConversationInfo(
		ctx context.Context,
		actorID string,
		conversationID string,
		name *string,
		imgUrl *string,
	) (models.Conversation, error)
	DeleteConversation(ctx context.Context, actorID, conversationID string) error
	UploadConversationAvatar(
		ctx context.Context,
		actorID string,
		conversationID string,
		data []byte,
	) (models.Conversation, error)
	CreateMessage(
		ctx context.Context,
		senderID string,
		conversationID string,
		text *string,
		imgUrl *string,
	) (models.Message, error)
	EditMessage(
		ctx context.Context,
		actorID string,
		messageID string,
		text *string,
		imgUrl *string,
	) (models.Message, error)
	DeleteMessage(ctx context.Context, actorID, messageID string) (models.Message, error)
	MarkMessagesAsRead(ctx context.Context, readerID string, messageIDs []string) ([]models.Message, error)
}

type Server struct {
	srv *http.Server
}

func New(ctx context.Context, port int, env string, service Service, tokens *jwt.Manager, rps, burst int) *Server {
	if env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(ctx))
	router.Use(RateLimit(rps, burst))

	h := &handler{service: service}

	api := router.Group("/api")
	{
		api.POST("/users", h.register)
		api.POST("/users/login", h.login)

		authed := api.Group("", Auth(tokens, service))
		{
			authed.GET("/users", h.getUsers)
			authed.GET("/users/name/:name", h.getUsersByName)
			authed.PATCH("/users/:id", h.updateUser)
			authed.DELETE("/users/:id", h.deleteUser)
			authed.POST("/users/:id/avatar", h.uploadUserAvatar)

			authed.GET("/conversations/user/:userid", h.getUserConversations)
			authed.GET("/conversations/:id/user/:userid", h.getUserConversation)
			authed.POST("/conversations", h.createConversation)
			authed.PATCH("/conversations/:id/info", h.updateConversationInfo)
			authed.POST("/conversations/:id/avatar", h.uploadConversationAvatar)
			authed.DELETE("/conversations/:id", h.deleteConversation)
			authed.PATCH("/conversations/:id/leave", h.leaveConversation)
			authed.PATCH("/conversations/:id/user/:userid/remove", h.removeMember)
			authed.PATCH("/conversations/:id/user/:userid/add", h.addMember)
			authed.PATCH("/conversations/:id/user/:userid/admingive", h.grantAdmin)
			authed.PATCH("/conversations/:id/user/:userid/adminremove", h.revokeAdmin)

			authed.POST("/messages/conversation/:id", h.createMessage)
			authed.PATCH("/messages/:id/edit", h.editMessage)
			authed.PATCH("/messages/:id/delete", h.deleteMessage)
			authed.PATCH("/messages/markread", h.markMessagesAsRead)
		}
	}

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Run(ctx context.Context) error {
	const op = "api.Run"

	logger.GetFromCtx(ctx).Info(ctx, "http server started")

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	const op = "api.Stop"

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type handler struct {
	service Service
}
