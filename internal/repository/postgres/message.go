package postgres

import (
	"context"
	"fmt"

	"github.com/garnizeh/studybuddy/pkg/models"
)

func (r *PostgresRepo) InsertMessage(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	if m == nil {
		return nil, fmt.Errorf("message is nil")
	}

	out := *m
	err := r.pool.QueryRow(ctx, `INSERT INTO chat_messages (chat_id, sender_id, message, "timestamp") VALUES ($1, $2, $3, $4) RETURNING id, "timestamp"`,
		m.ChatID, m.SenderID, m.Message, orNow(m.Timestamp)).Scan(&out.ID, &out.Timestamp)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PostgresRepo) ListMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, chat_id, sender_id, message, "timestamp" FROM chat_messages WHERE chat_id = $1 ORDER BY "timestamp" ASC, id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Message, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
