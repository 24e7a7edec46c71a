package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/studybuddy/pkg/models"
)

const chatColumns = `chat_id, participant_low, participant_high, sender_name, receiver_name, created_at`

func scanChat(s scanner) (*models.Chat, error) {
	var c models.Chat
	var created int64
	if err := s.Scan(&c.ChatID, &c.ParticipantsID[0], &c.ParticipantsID[1], &c.SenderName, &c.ReceiverName, &created); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	return &c, nil
}

func (r *SQLiteRepo) UpsertChat(ctx context.Context, c *models.Chat) (*models.Chat, error) {
	if c == nil {
		return nil, fmt.Errorf("chat is nil")
	}
	if c.ParticipantsID[0] >= c.ParticipantsID[1] {
		return nil, fmt.Errorf("participants %v are not in canonical order", c.ParticipantsID)
	}

	row := r.conn.QueryRow(ctx, `INSERT INTO chats (participant_low, participant_high, sender_name, receiver_name, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (participant_low, participant_high) DO UPDATE SET
			sender_name = excluded.sender_name,
			receiver_name = excluded.receiver_name,
			created_at = excluded.created_at
		RETURNING `+chatColumns,
		c.ParticipantsID[0], c.ParticipantsID[1], c.SenderName, c.ReceiverName, millis(c.CreatedAt))

	out, err := scanChat(row)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("chat upserted", "chat_id", out.ChatID)

	return out, nil
}

func (r *SQLiteRepo) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE chat_id = ?`, chatID)
	c, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return c, nil
}

func (r *SQLiteRepo) ListChatsByParticipant(ctx context.Context, userID string) ([]models.Chat, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+chatColumns+` FROM chats WHERE participant_low = ? OR participant_high = ? ORDER BY created_at DESC, chat_id DESC`, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *c)
	}

	return out, rows.Err()
}
