// Package chats keeps one thread per pair of users.
package chats

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

// Store is what the registry reads and writes.
type Store interface {
	repository.ChatRepo
	repository.ProfileRepo
}

type Registry struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func New(store Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{store: store, logger: logger, now: time.Now}
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b string) [2]string {
	if b < a {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

// List returns the chats userID takes part in, newest first.
func (r *Registry) List(ctx context.Context, userID string) ([]models.Chat, error) {
	out, err := r.store.ListChatsByParticipant(ctx, userID)
	if err != nil {
		r.logger.Error("list chats failed", slog.String("user_id", userID), slog.Any("err", err))
		return nil, errorx.Query(err, "list chats")
	}
	if out == nil {
		out = []models.Chat{}
	}
	return out, nil
}

// StartOrGet returns the chat between userID and counterpartID, creating it if needed.
// Calling it again from either side rewrites the names and created_at of the same row.
func (r *Registry) StartOrGet(ctx context.Context, userID, counterpartID, myName, counterpartName string) (*models.Chat, error) {
	if userID == "" || counterpartID == "" {
		return nil, errorx.Validation("both participants are required")
	}
	if userID == counterpartID {
		return nil, errorx.Validation("cannot start a chat with yourself")
	}

	c, err := r.store.UpsertChat(ctx, &models.Chat{
		ParticipantsID: CanonicalPair(userID, counterpartID),
		SenderName:     myName,
		ReceiverName:   counterpartName,
		CreatedAt:      r.now().UTC(),
	})
	if err != nil {
		r.logger.Error("upsert chat failed", slog.String("user_id", userID), slog.String("counterpart_id", counterpartID), slog.Any("err", err))
		return nil, errorx.Query(err, "start chat")
	}
	return c, nil
}

// Start is StartOrGet with both names taken from the users' profiles.
func (r *Registry) Start(ctx context.Context, userID, counterpartID string) (*models.Chat, error) {
	if userID == counterpartID {
		return nil, errorx.Validation("cannot start a chat with yourself")
	}
	me, err := r.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, errorx.Query(err, "get profile")
	}
	if me == nil {
		return nil, errorx.Validation("create your profile before starting a chat")
	}
	other, err := r.store.GetProfile(ctx, counterpartID)
	if err != nil {
		return nil, errorx.Query(err, "get profile")
	}
	if other == nil {
		return nil, errorx.Newf(errorx.KindNotFound, "user %s not found", counterpartID)
	}
	return r.StartOrGet(ctx, userID, counterpartID, me.Name, other.Name)
}

// Get loads one chat.
func (r *Registry) Get(ctx context.Context, chatID int64) (*models.Chat, error) {
	c, err := r.store.GetChat(ctx, chatID)
	if err != nil {
		r.logger.Error("get chat failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		return nil, errorx.Query(err, "get chat")
	}
	if c == nil {
		return nil, errorx.Newf(errorx.KindNotFound, "chat %d not found", chatID)
	}
	return c, nil
}

// GetFor loads one chat and checks that userID is one of its participants.
func (r *Registry) GetFor(ctx context.Context, chatID int64, userID string) (*models.Chat, error) {
	c, err := r.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, errorx.Newf(errorx.KindForbidden, "not a participant of chat %d", chatID)
	}
	return c, nil
}

// Counterpart returns the profile of the other participant of chatID.
func (r *Registry) Counterpart(ctx context.Context, chatID int64, myUserID string) (*models.UserProfile, error) {
	c, err := r.GetFor(ctx, chatID, myUserID)
	if err != nil {
		return nil, err
	}
	otherID := ResolveCounterpart(c, myUserID)
	p, err := r.store.GetProfile(ctx, otherID)
	if err != nil {
		r.logger.Error("get counterpart failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		return nil, errorx.Query(err, "get counterpart profile")
	}
	if p == nil {
		return nil, errorx.Newf(errorx.KindNotFound, "user %s has no profile", otherID)
	}
	return p, nil
}

// ResolveCounterpart returns the participant that is not myUserID.
func ResolveCounterpart(c *models.Chat, myUserID string) string {
	if c.ParticipantsID[0] == myUserID {
		return c.ParticipantsID[1]
	}
	return c.ParticipantsID[0]
}

// DisplayName is the title shown to the viewer: the other side's name, decided by comparing
// names rather than ids.
func DisplayName(c *models.Chat, viewerName string) string {
	if viewerName == c.SenderName {
		return c.ReceiverName
	}
	return c.SenderName
}

// Filter keeps the chats whose display name contains query, ignoring case. An empty query
// keeps everything.
func Filter(list []models.Chat, viewerName, query string) []models.Chat {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]models.Chat, 0, len(list))
	for i := range list {
		if strings.Contains(strings.ToLower(DisplayName(&list[i], viewerName)), q) {
			out = append(out, list[i])
		}
	}
	return out
}
