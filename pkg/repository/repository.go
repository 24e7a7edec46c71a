package repository

import (
	"context"
	"errors"

	"github.com/garnizeh/studybuddy/pkg/models"
)

// ErrDuplicateEmail is returned by CreateAccount when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Getters return (nil, nil) when the row does not exist.

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

type ProfileRepo interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	// UpsertProfile inserts the profile or overwrites the row with the same user_id.
	// A nil ImageURL keeps the stored one.
	UpsertProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	ListProfilesByMajor(ctx context.Context, major, excludeUserID string) ([]models.UserProfile, error)
}

type ChatRepo interface {
	// UpsertChat inserts the chat or overwrites names and created_at of the row with the
	// same participant pair. ParticipantsID must already be canonical.
	UpsertChat(ctx context.Context, c *models.Chat) (*models.Chat, error)
	GetChat(ctx context.Context, chatID int64) (*models.Chat, error)
	ListChatsByParticipant(ctx context.Context, userID string) ([]models.Chat, error)
}

type MessageRepo interface {
	InsertMessage(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error)
}

// Store bundles every repository a backend needs.
type Store interface {
	AccountRepo
	ProfileRepo
	ChatRepo
	MessageRepo
}
