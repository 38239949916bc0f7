package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/jackc/pgx/v5"
)

const recentMessagesLimit = 10

func (s *Storage) SaveConversation(ctx context.Context, draft models.ConversationDraft) (models.Conversation, error) {
	const op = "storage.postgres.SaveConversation"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	conv := models.Conversation{
		ID:      draft.ID,
		Name:    draft.Name,
		ImgUrl:  draft.ImgUrl,
		IsGroup: draft.IsGroup,
	}
	err = tx.QueryRow(
		ctx,
		`INSERT INTO conversations (id, name, img_url, is_group)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		draft.ID, draft.Name, draft.ImgUrl, draft.IsGroup,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, userID := range draft.UserIDs {
		_, err = tx.Exec(
			ctx,
			"INSERT INTO conversation_members (conversation_id, user_id) VALUES ($1, $2)",
			draft.ID, userID,
		)
		if err != nil {
			return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	for _, userID := range draft.AdminIDs {
		_, err = tx.Exec(
			ctx,
			"INSERT INTO conversation_admins (conversation_id, user_id) VALUES ($1, $2)",
			draft.ID, userID,
		)
		if err != nil {
			return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	conv.Users, conv.Admins, err = conversationParties(ctx, tx, draft.ID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Messages = []models.Message{}
	return conv, nil
}

// GetConversation loads a conversation with its member and admin sets,
// without messages.
func (s *Storage) GetConversation(ctx context.Context, id string) (models.Conversation, error) {
	const op = "storage.postgres.GetConversation"

	conv, err := scanConversation(s.db.QueryRow(
		ctx,
		"SELECT id, name, img_url, is_group, created_at, updated_at FROM conversations WHERE id = $1",
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Conversation{}, fmt.Errorf("%s: %w", op, storage.ErrConversationNotFound)
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Users, conv.Admins, err = conversationParties(ctx, s.db, id)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

// GetUserConversation loads a single conversation with its full message
// history (ascending), scoped to a participant. A conversation the user
// is not part of is indistinguishable from a missing one.
func (s *Storage) GetUserConversation(ctx context.Context, userID, conversationID string) (models.Conversation, error) {
	const op = "storage.postgres.GetUserConversation"

	conv, err := scanConversation(s.db.QueryRow(
		ctx,
		`SELECT c.id, c.name, c.img_url, c.is_group, c.created_at, c.updated_at
		 FROM conversations c
		 JOIN conversation_members cm ON cm.conversation_id = c.id
		 WHERE c.id = $1 AND cm.user_id = $2`,
		conversationID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Conversation{}, fmt.Errorf("%s: %w", op, storage.ErrConversationNotFound)
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Users, conv.Admins, err = conversationParties(ctx, s.db, conversationID)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Messages, err = s.conversationMessages(ctx, conversationID, 0)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

// GetUserConversations lists every conversation the user participates
// in, each with its members and the 10 most recent messages
// (newest first). Admin sets are omitted from the summary view.
func (s *Storage) GetUserConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	const op = "storage.postgres.GetUserConversations"

	rows, err := s.db.Query(
		ctx,
		`SELECT c.id, c.name, c.img_url, c.is_group, c.created_at, c.updated_at
		 FROM conversations c
		 JOIN conversation_members cm ON cm.conversation_id = c.id
		 WHERE cm.user_id = $1
		 ORDER BY c.updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		convs = append(convs, conv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range convs {
		convs[i].Users, _, err = conversationParties(ctx, s.db, convs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		convs[i].Messages, err = s.conversationMessages(ctx, convs[i].ID, recentMessagesLimit)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return convs, nil
}

// MutateConversation runs fn against a locked snapshot of the
// conversation and persists whatever fn changed, all in one
// transaction. The row lock serializes concurrent membership and admin
// mutations, so invariant checks made by fn hold at commit time.
func (s *Storage) MutateConversation(
	ctx context.Context,
	id string,
	fn func(*models.Conversation) error,
) (models.Conversation, error) {
	const op = "storage.postgres.MutateConversation"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	conv, err := scanConversation(tx.QueryRow(
		ctx,
		`SELECT id, name, img_url, is_group, created_at, updated_at
		 FROM conversations WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Conversation{}, fmt.Errorf("%s: %w", op, storage.ErrConversationNotFound)
		}
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Users, conv.Admins, err = conversationParties(ctx, tx, id)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	beforeMembers := conv.MemberIDs()
	beforeAdmins := conv.AdminIDs()

	if err = fn(&conv); err != nil {
		return models.Conversation{}, err
	}

	err = applyPartyDiff(ctx, tx, "conversation_members", id, beforeMembers, conv.MemberIDs())
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}
	err = applyPartyDiff(ctx, tx, "conversation_admins", id, beforeAdmins, conv.AdminIDs())
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	err = tx.QueryRow(
		ctx,
		"UPDATE conversations SET name = $1, img_url = $2, updated_at = now() WHERE id = $3 RETURNING updated_at",
		conv.Name, conv.ImgUrl, id,
	).Scan(&conv.UpdatedAt)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	conv.Users, conv.Admins, err = conversationParties(ctx, tx, id)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	return conv, nil
}

func (s *Storage) DeleteConversation(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteConversation"

	tag, err := s.db.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrConversationNotFound)
	}

	return nil
}

func scanConversation(row pgx.Row) (models.Conversation, error) {
	var conv models.Conversation
	err := row.Scan(
		&conv.ID,
		&conv.Name,
		&conv.ImgUrl,
		&conv.IsGroup,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		return models.Conversation{}, err
	}
	return conv, nil
}

func conversationParties(ctx context.Context, q querier, conversationID string) ([]models.UserPublic, []models.UserPublic, error) {
	users, err := queryPublicUsers(
		ctx,
		q,
		`SELECT u.id, u.first_name, u.last_name, u.img_url, u.about, u.created_at
		 FROM users u
		 JOIN conversation_members cm ON cm.user_id = u.id
		 WHERE cm.conversation_id = $1
		 ORDER BY cm.joined_at, u.id`,
		conversationID,
	)
	if err != nil {
		return nil, nil, err
	}

	admins, err := queryPublicUsers(
		ctx,
		q,
		`SELECT u.id, u.first_name, u.last_name, u.img_url, u.about, u.created_at
		 FROM users u
		 JOIN conversation_admins ca ON ca.user_id = u.id
		 WHERE ca.conversation_id = $1
		 ORDER BY ca.granted_at, u.id`,
		conversationID,
	)
	if err != nil {
		return nil, nil, err
	}

	return users, admins, nil
}

func applyPartyDiff(ctx context.Context, q querier, table, conversationID string, before, after []string) error {
	in := func(ids []string, id string) bool {
		for _, v := range ids {
			if v == id {
				return true
			}
		}
		return false
	}

	for _, id := range before {
		if in(after, id) {
			continue
		}
		sql := fmt.Sprintf("DELETE FROM %s WHERE conversation_id = $1 AND user_id = $2", table)
		if _, err := q.Exec(ctx, sql, conversationID, id); err != nil {
			return err
		}
	}
	for _, id := range after {
		if in(before, id) {
			continue
		}
		sql := fmt.Sprintf("INSERT INTO %s (conversation_id, user_id) VALUES ($1, $2)", table)
		if _, err := q.Exec(ctx, sql, conversationID, id); err != nil {
			return err
		}
	}

	return nil
}
