package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/garnizeh/studybuddy/pkg/models"
)

const chatColumns = `chat_id, participants_id, sender_name, receiver_name, created_at`

func scanChat(row pgx.Row) (*models.Chat, error) {
	var c models.Chat
	var participants []string
	if err := row.Scan(&c.ChatID, &participants, &c.SenderName, &c.ReceiverName, &c.CreatedAt); err != nil {
		return nil, err
	}
	if len(participants) != 2 {
		return nil, fmt.Errorf("chat %d has %d participants", c.ChatID, len(participants))
	}
	c.ParticipantsID = [2]string{participants[0], participants[1]}
	return &c, nil
}

func (r *PostgresRepo) UpsertChat(ctx context.Context, c *models.Chat) (*models.Chat, error) {
	if c == nil {
		return nil, fmt.Errorf("chat is nil")
	}
	if c.ParticipantsID[0] >= c.ParticipantsID[1] {
		return nil, fmt.Errorf("participants %v are not in canonical order", c.ParticipantsID)
	}

	out, err := scanChat(r.pool.QueryRow(ctx, `INSERT INTO chats (participants_id, sender_name, receiver_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participants_id) DO UPDATE SET
			sender_name = EXCLUDED.sender_name,
			receiver_name = EXCLUDED.receiver_name,
			created_at = EXCLUDED.created_at
		RETURNING `+chatColumns,
		c.ParticipantsID[:], c.SenderName, c.ReceiverName, orNow(c.CreatedAt)))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("chat upserted", "chat_id", out.ChatID)
	return out, nil
}

func (r *PostgresRepo) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	c, err := scanChat(r.pool.QueryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE chat_id = $1`, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepo) ListChatsByParticipant(ctx context.Context, userID string) ([]models.Chat, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+chatColumns+` FROM chats WHERE participants_id @> ARRAY[$1]::text[] ORDER BY created_at DESC, chat_id DESC`, userID)
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
