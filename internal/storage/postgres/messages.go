package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlexMickh/speak-messenger/internal/models"
	"github.com/AlexMickh/speak-messenger/internal/storage"
	"github.com/jackc/pgx/v5"
)

const messageColumns = "id, conversation_id, sender_id, text, img_url, deleted, created_at, updated_at"

func (s *Storage) SaveMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	const op = "storage.postgres.SaveMessage"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(
		ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, text, img_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		msg.ID, msg.ConversationID, msg.SenderID, msg.Text, msg.ImgUrl,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	// the sender has implicitly read their own message
	_, err = tx.Exec(
		ctx,
		"INSERT INTO message_reads (message_id, user_id) VALUES ($1, $2)",
		msg.ID, msg.SenderID,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	msg.ReadBy, err = messageReaders(ctx, tx, msg.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Storage) GetMessage(ctx context.Context, id string) (models.Message, error) {
	const op = "storage.postgres.GetMessage"

	msg, err := scanMessage(s.db.QueryRow(
		ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id = $1",
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, fmt.Errorf("%s: %w", op, storage.ErrMessageNotFound)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	msg.ReadBy, err = messageReaders(ctx, s.db, id)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

func (s *Storage) UpdateMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	const op = "storage.postgres.UpdateMessage"

	updated, err := scanMessage(s.db.QueryRow(
		ctx,
		`UPDATE messages SET text = $1, img_url = $2, deleted = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING `+messageColumns,
		msg.Text, msg.ImgUrl, msg.Deleted, msg.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, fmt.Errorf("%s: %w", op, storage.ErrMessageNotFound)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	updated.ReadBy, err = messageReaders(ctx, s.db, msg.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// MarkMessageRead records a read receipt for userID. The insert is
// scoped by conversation membership, so a message the user cannot see
// behaves exactly like a missing one. Re-reading is a no-op: the
// receipt set only grows.
func (s *Storage) MarkMessageRead(ctx context.Context, userID, messageID string) (models.Message, error) {
	const op = "storage.postgres.MarkMessageRead"

	_, err := s.db.Exec(
		ctx,
		`INSERT INTO message_reads (message_id, user_id)
		 SELECT m.id, $2
		 FROM messages m
		 JOIN conversation_members cm ON cm.conversation_id = m.conversation_id AND cm.user_id = $2
		 WHERE m.id = $1
		 ON CONFLICT DO NOTHING`,
		messageID, userID,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	msg, err := scanMessage(s.db.QueryRow(
		ctx,
		`SELECT `+prefixedMessageColumns+`
		 FROM messages m
		 JOIN conversation_members cm ON cm.conversation_id = m.conversation_id
		 WHERE m.id = $1 AND cm.user_id = $2`,
		messageID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, fmt.Errorf("%s: %w", op, storage.ErrMessageNotFound)
		}
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	msg.ReadBy, err = messageReaders(ctx, s.db, messageID)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return msg, nil
}

const prefixedMessageColumns = "m.id, m.conversation_id, m.sender_id, m.text, m.img_url, m.deleted, m.created_at, m.updated_at"

// conversationMessages loads the messages of a conversation with their
// readers. limit 0 means the full history in ascending order; a
// positive limit returns that many most recent messages, newest first.
func (s *Storage) conversationMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	sql := "SELECT " + messageColumns + " FROM messages WHERE conversation_id = $1 ORDER BY created_at"
	args := []any{conversationID}
	if limit > 0 {
		sql += " DESC LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range msgs {
		msgs[i].ReadBy, err = messageReaders(ctx, s.db, msgs[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return msgs, nil
}

func scanMessage(row pgx.Row) (models.Message, error) {
	var msg models.Message
	err := row.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.SenderID,
		&msg.Text,
		&msg.ImgUrl,
		&msg.Deleted,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func messageReaders(ctx context.Context, q querier, messageID string) ([]models.UserPublic, error) {
	return queryPublicUsers(
		ctx,
		q,
		`SELECT u.id, u.first_name, u.last_name, u.img_url, u.about, u.created_at
		 FROM users u
		 JOIN message_reads mr ON mr.user_id = u.id
		 WHERE mr.message_id = $1
		 ORDER BY mr.read_at, u.id`,
		messageID,
	)
}
