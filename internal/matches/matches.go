// Package matches finds study partners: other users in the same major.
package matches

import (
	"context"
	"log/slog"

	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

type Finder struct {
	store  repository.ProfileRepo
	logger *slog.Logger
}

func New(store repository.ProfileRepo, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{store: store, logger: logger}
}

// Find returns every profile sharing the caller's major, excluding the caller, in storage
// order. A caller without a profile has no matches.
func (f *Finder) Find(ctx context.Context, userID string) ([]models.UserProfile, error) {
	me, err := f.store.GetProfile(ctx, userID)
	if err != nil {
		f.logger.Error("get profile failed", slog.String("user_id", userID), slog.Any("err", err))
		return nil, errorx.Query(err, "get profile")
	}
	if me == nil {
		return []models.UserProfile{}, nil
	}

	out, err := f.store.ListProfilesByMajor(ctx, me.Major, userID)
	if err != nil {
		f.logger.Error("list matches failed", slog.String("major", me.Major), slog.Any("err", err))
		return nil, errorx.Query(err, "list matches")
	}
	if out == nil {
		out = []models.UserProfile{}
	}
	return out, nil
}
