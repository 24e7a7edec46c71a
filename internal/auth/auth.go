// Package auth implements email/password sign-up and sign-in on top of the account store.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

// TokenIssuer signs a session token for a user.
type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type Service struct {
	accounts repository.AccountRepo
	tokens   TokenIssuer
	logger   *slog.Logger
	cost     int
	now      func() time.Time
}

func New(accounts repository.AccountRepo, tokens TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{accounts: accounts, tokens: tokens, logger: logger, cost: bcrypt.DefaultCost, now: time.Now}
}

// WithCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new account and returns a session token for it.
func (s *Service) SignUp(ctx context.Context, email, password string) (string, *models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, errorx.Validation("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, errorx.Wrap(err, errorx.KindInternal, "hash password")
	}

	acc := &models.Account{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Created:      s.now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", nil, errorx.Auth("email already registered")
		}
		s.logger.Error("create account failed", slog.String("email", email), slog.Any("err", err))
		return "", nil, errorx.Query(err, "create account")
	}

	token, err := s.tokens.Issue(acc.UserID, acc.Email)
	if err != nil {
		return "", nil, errorx.Wrap(err, errorx.KindInternal, "issue token")
	}
	return token, acc, nil
}

// SignIn checks the credentials and returns a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *models.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, errorx.Validation("email and password are required")
	}

	acc, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		s.logger.Error("get account failed", slog.String("email", email), slog.Any("err", err))
		return "", nil, errorx.Query(err, "get account")
	}
	if acc == nil {
		return "", nil, errorx.Auth("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return "", nil, errorx.Auth("invalid credentials")
	}

	token, err := s.tokens.Issue(acc.UserID, acc.Email)
	if err != nil {
		return "", nil, errorx.Wrap(err, errorx.KindInternal, "issue token")
	}
	return token, acc, nil
}
