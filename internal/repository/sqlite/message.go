package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/studybuddy/pkg/models"
)

func (r *SQLiteRepo) InsertMessage(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil")
	}

	ts := millis(m.Timestamp)
	res, err := r.conn.Exec(ctx, `INSERT INTO chat_messages (chat_id, sender_id, message, timestamp) VALUES (?, ?, ?, ?)`, m.ChatID, m.SenderID, m.Message, ts)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	out := *m
	out.ID = id
	out.Timestamp = fromMillis(ts)
	return &out, nil
}

// ListMessages returns every message of the chat, oldest first.
func (r *SQLiteRepo) ListMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, chat_id, sender_id, message, timestamp FROM chat_messages WHERE chat_id = ? ORDER BY timestamp ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var ts int64
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Message, &ts); err != nil {
			return nil, err
		}
		m.Timestamp = fromMillis(ts)

		out = append(out, m)
	}

	return out, rows.Err()
}
