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

func (s *Service) CreateMessage(
	ctx context.Context,
	senderID string,
	conversationID string,
	text *string,
	imgUrl *string,
) (models.Message, error) {
	const op = "service.CreateMessage"

	if text == nil && imgUrl == nil {
		return models.Message{}, errs.Validation("message must contain text or an image")
	}

	conv, err := s.storage.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return models.Message{}, conversationNotFound(conversationID, senderID)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	if !chat.IsParticipant(conv, senderID) {
		return models.Message{}, conversationNotFound(conversationID, senderID)
	}

	msg, err := s.storage.SaveMessage(ctx, models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		ImgUrl:         imgUrl,
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Service) EditMessage(
	ctx context.Context,
	actorID string,
	messageID string,
	text *string,
	imgUrl *string,
) (models.Message, error) {
	const op = "service.EditMessage"

	msg, err := s.storage.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return models.Message{}, errs.NotFoundf("message with id %s wasn't found", messageID)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = chat.Edit(&msg, actorID, text, imgUrl); err != nil {
		return models.Message{}, err
	}

	updated, err := s.storage.UpdateMessage(ctx, msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Service) DeleteMessage(ctx context.Context, actorID, messageID string) (models.Message, error) {
	const op = "service.DeleteMessage"

	msg, err := s.storage.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return models.Message{}, errs.NotFoundf("message with id %s wasn't found", messageID)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = chat.SoftDelete(&msg, actorID); err != nil {
		return models.Message{}, err
	}

	updated, err := s.storage.UpdateMessage(ctx, msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// MarkMessagesAsRead records read receipts for every listed message the
// reader can see. Ids that are unknown, or that belong to conversations
// the reader is not part of, are skipped without failing the batch.
func (s *Service) MarkMessagesAsRead(ctx context.Context, readerID string, messageIDs []string) ([]models.Message, error) {
	seen := make(map[string]struct{}, len(messageIDs))
	msgs := make([]models.Message, 0, len(messageIDs))

	for _, id := range messageIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		msg, err := s.storage.MarkMessageRead(ctx, readerID, id)
		if err != nil {
			if !errors.Is(err, storage.ErrMessageNotFound) {
				logger.GetFromCtx(ctx).Error(ctx, "failed to mark message as read",
					zap.String("message_id", id), zap.Error(err))
			}
			continue
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}
