package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexMickh/speak-messenger/internal/chat"
	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateConversation validates the draft, checks that every listed user
// exists and persists the conversation. Any unknown id fails the whole
// call, nothing is created.
func (s *Service) CreateConversation(
	ctx context.Context,
	creatorID string,
	name *string,
	imgUrl *string,
	userIDs []string,
	adminIDs []string,
) (models.Conversation, error) {
	const op = "service.CreateConversation"

	draft, err := chat.NewDraft(creatorID, name, imgUrl, userIDs, adminIDs)
	if err != nil {
		return models.Conversation{}, err
	}

	for _, id := range draft.UserIDs {
		if _, err = s.storage.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				return models.Conversation{}, errs.NotFoundf("user with id %s wasn't found", id)
			}
			return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	draft.ID = uuid.NewString()

	conv, err := s.storage.SaveConversation(ctx, draft)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

func (s *Service) GetUserConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	const op = "service.GetUserConversations"

	convs, err := s.storage.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return convs, nil
}

func (s *Service) GetUserConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error) {
	const op = "service.GetUserConversation"

	conv, err := s.storage.GetUserConversation(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return models.Conversation{}, conversationNotFound(conversationID, userID)
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

func (s *Service) AddMember(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error) {
	const op = "service.AddMember"

	if _, err := s.storage.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Conversation{}, errs.NotFoundf("user with id %s wasn't found", userID)
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.mutate(ctx, op, conversationID, actorID, func(c *models.Conversation) error {
		return chat.AddMember(c, actorID, userID)
	})
}

func (s *Service) RemoveMember(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error) {
	const op = "service.RemoveMember"

	return s.mutate(ctx, op, conversationID, userID, func(c *models.Conversation) error {
		return chat.RemoveMember(c, actorID, userID)
	})
}

func (s *Service) LeaveConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error) {
	const op = "service.LeaveConversation"

	return s.mutate(ctx, op, conversationID, userID, func(c *models.Conversation) error {
		return chat.Leave(c, userID)
	})
}

func (s *Service) GrantAdmin(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error) {
	const op = "service.GrantAdmin"

	return s.mutate(ctx, op, conversationID, userID, func(c *models.Conversation) error {
		return chat.GrantAdmin(c, actorID, userID)
	})
}

func (s *Service) RevokeAdmin(ctx context.Context, actorID, conversationID, userID string) (models.Conversation, error) {
	const op = "service.RevokeAdmin"

	return s.mutate(ctx, op, conversationID, userID, func(c *models.Conversation) error {
		return chat.RevokeAdmin(c, actorID, userID)
	})
}

func (s *Service) UpdateConversationInfo(
	ctx context.Context,
	actorID string,
	conversationID string,
	name *string,
	imgUrl *string,
) (models.Conversation, error) {
	const op = "service.UpdateConversationInfo"

	return s.mutate(ctx, op, conversationID, actorID, func(c *models.Conversation) error {
		return chat.UpdateInfo(c, actorID, name, imgUrl)
	})
}

func (s *Service) DeleteConversation(ctx context.Context, actorID, conversationID string) error {
	const op = "service.DeleteConversation"

	conv, err := s.storage.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return conversationNotFound(conversationID, actorID)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = chat.CanDelete(conv, actorID); err != nil {
		return err
	}

	if err = s.storage.DeleteConversation(ctx, conversationID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.s3.DeleteAvatar(ctx, conversationID); err != nil {
		logger.GetFromCtx(ctx).Error(ctx, "failed to delete avatar", zap.Error(err))
	}

	return nil
}

// UploadConversationAvatar stores the image and sets it as the
// conversation picture on behalf of an admin.
func (s *Service) UploadConversationAvatar(
	ctx context.Context,
	actorID string,
	conversationID string,
	data []byte,
) (models.Conversation, error) {
	const op = "service.UploadConversationAvatar"

	url, err := s.s3.SaveAvatar(ctx, models.Avatar{ID: conversationID, Data: data})
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.mutate(ctx, op, conversationID, actorID, func(c *models.Conversation) error {
		return chat.UpdateInfo(c, actorID, nil, &url)
	})
}

// mutate runs an engine transition inside the storage transaction. A
// missing conversation row maps to the same conflated not-found answer
// the engine gives for a non-member, so outsiders learn nothing.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	conversationID string,
	subjectID string,
	fn func(*models.Conversation) error,
) (models.Conversation, error) {
	conv, err := s.storage.MutateConversation(ctx, conversationID, fn)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return models.Conversation{}, conversationNotFound(conversationID, subjectID)
		}
		if errs.KindOf(err) != 0 {
			return models.Conversation{}, err
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

func conversationNotFound(conversationID, userID string) error {
	return errs.NotFoundf(
		"either conversation with id %s wasn't found or user with id %s is not part of this group conversation",
		conversationID, userID,
	)
}
