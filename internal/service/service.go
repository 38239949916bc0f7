package service

import (
	"context"

	"github.com/AlexMickh/speak-messenger/internal/models"
)

type Storage interface {
	SaveUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsers(ctx context.Context) ([]models.UserPublic, error)
	GetUsersByName(ctx context.Context, name string) ([]models.UserPublic, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
	SaveConversation(ctx context.Context, draft models.ConversationDraft) (models.Conversation, error)
	GetConversation(ctx context.Context, id string) (models.Conversation, error)
	GetUserConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error)
	GetUserConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	MutateConversation(
		ctx context.Context,
		id string,
		fn func(*models.Conversation) error,
	) (models.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	SaveMessage(ctx context.Context, msg models.Message) (models.Message, error)
	GetMessage(ctx context.Context, id string) (models.Message, error)
	UpdateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	MarkMessageRead(ctx context.Context, userID, messageID string) (models.Message, error)
}

type Cache interface {
	SaveUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type S3 interface {
	SaveAvatar(ctx context.Context, avatar models.Avatar) (string, error)
	DeleteAvatar(ctx context.Context, avatarId string) error
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Service struct {
	storage Storage
	cache   Cache
	s3      S3
	tokens  TokenIssuer
}

func New(storage Storage, cache Cache, s3 S3, tokens TokenIssuer) *Service {
	return &Service{
		storage: storage,
		cache:   cache,
		s3:      s3,
		tokens:  tokens,
	}
}
