package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

// Store is an in-memory repository.Store used by tests. It follows the same upsert and
// ordering rules as the SQL stores.
type Store struct {
	mu sync.Mutex

	accounts map[string]*models.Account // by email
	profiles map[string]*models.UserProfile
	order    []string // profile user ids in insertion order
	chats    map[[2]string]*models.Chat
	messages []models.ChatMessage
	nextChat int64
	nextMsg  int64

	// Error injection.
	CreateErr error
	GetErr    error
	UpsertErr error
	ListErr   error
	InsertErr error

	// Call counters.
	UpsertProfileCalls int
	UpsertChatCalls    int
	InsertCalls        int
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts: make(map[string]*models.Account),
		profiles: make(map[string]*models.UserProfile),
		chats:    make(map[[2]string]*models.Chat),
	}
}

func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if _, ok := s.accounts[a.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	cp := *a
	s.accounts[a.Email] = &cp
	return nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	a, ok := s.accounts[email]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpsertProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpsertProfileCalls++
	if s.UpsertErr != nil {
		return nil, s.UpsertErr
	}
	cp := *p
	if existing, ok := s.profiles[p.UserID]; ok {
		if cp.ImageURL == nil {
			cp.ImageURL = existing.ImageURL
		}
	} else {
		s.order = append(s.order, p.UserID)
	}
	s.profiles[p.UserID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) ListProfilesByMajor(ctx context.Context, major, excludeUserID string) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.UserProfile
	for _, id := range s.order {
		p := s.profiles[id]
		if p.Major == major && p.UserID != excludeUserID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *Store) UpsertChat(ctx context.Context, c *models.Chat) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpsertChatCalls++
	if s.UpsertErr != nil {
		return nil, s.UpsertErr
	}
	if existing, ok := s.chats[c.ParticipantsID]; ok {
		existing.SenderName = c.SenderName
		existing.ReceiverName = c.ReceiverName
		existing.CreatedAt = c.CreatedAt
		out := *existing
		return &out, nil
	}
	s.nextChat++
	cp := *c
	cp.ChatID = s.nextChat
	s.chats[c.ParticipantsID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) GetChat(ctx context.Context, chatID int64) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	for _, c := range s.chats {
		if c.ChatID == chatID {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListChatsByParticipant(ctx context.Context, userID string) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.Chat
	for _, c := range s.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ChatID > out[j].ChatID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ChatCount returns the number of stored chat rows.
func (s *Store) ChatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

func (s *Store) InsertMessage(ctx context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InsertCalls++
	if s.InsertErr != nil {
		return nil, s.InsertErr
	}
	s.nextMsg++
	cp := *m
	cp.ID = s.nextMsg
	s.messages = append(s.messages, cp)
	return &cp, nil
}

func (s *Store) ListMessages(ctx context.Context, chatID int64) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []models.ChatMessage
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
