// Package messages is the append-only message log of a chat.
package messages

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

type Log struct {
	store  repository.MessageRepo
	logger *slog.Logger
	now    func() time.Time
}

func New(store repository.MessageRepo, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{store: store, logger: logger, now: time.Now}
}

// History returns every message of chatID, oldest first.
func (l *Log) History(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	out, err := l.store.ListMessages(ctx, chatID)
	if err != nil {
		l.logger.Error("fetch messages failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		return nil, errorx.Query(err, "fetch messages")
	}
	if out == nil {
		out = []models.ChatMessage{}
	}
	return out, nil
}

// Send appends text to chatID. The text is trimmed first; a blank message is dropped and
// ErrEmptyMessage returned without writing anything.
func (l *Log) Send(ctx context.Context, chatID int64, senderName, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errorx.ErrEmptyMessage
	}
	if senderName == "" {
		return nil, errorx.Validation("sender name is required")
	}

	m, err := l.store.InsertMessage(ctx, &models.ChatMessage{
		ChatID:    chatID,
		SenderID:  senderName,
		Message:   text,
		Timestamp: l.now().UTC(),
	})
	if err != nil {
		l.logger.Error("send message failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		return nil, errorx.Query(err, "send message")
	}
	return m, nil
}

// AppendOptimistic adds msg after the last item of history, as a client does before the
// next poll. It does not re-sort.
func AppendOptimistic(history []models.ChatMessage, msg models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(history), len(history)+1)
	copy(out, history)
	return append(out, msg)
}

// Changed reports whether next differs from prev. Since the log is append-only, comparing
// length and the id of the last message is enough.
func Changed(prev, next []models.ChatMessage) bool {
	if len(prev) != len(next) {
		return true
	}
	if len(next) == 0 {
		return false
	}
	return prev[len(prev)-1].ID != next[len(next)-1].ID
}
