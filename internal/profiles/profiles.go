// Package profiles reads and saves the caller's study-partner profile.
package profiles

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/garnizeh/studybuddy/internal/blob"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

// Fields are the user-editable parts of a profile.
type Fields struct {
	Name        string `json:"name" validate:"required"`
	Major       string `json:"major" validate:"required,notrailingspace"`
	YearOfStudy int    `json:"year_of_study" validate:"min=1,max=5"`
	Modules     string `json:"modules" validate:"required"`
	Description string `json:"description"`
}

// Image is an optional picture uploaded with a save.
type Image struct {
	Data        []byte
	ContentType string
	// Ext is the file extension used for the stored object, without the dot.
	Ext string
}

// messages for the first failing rule of each field, keyed by field and tag.
var ruleMessages = map[string]string{
	"Name.required":         "Name cannot be empty",
	"Major.required":        "Major cannot be empty",
	"Major.notrailingspace": "Please remove the space at the end of your major",
	"YearOfStudy.min":       "Year of study must be an integer between 1 and 5",
	"YearOfStudy.max":       "Year of study must be an integer between 1 and 5",
	"Modules.required":      "Please fill in the modules you are currently taking",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notrailingspace", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimRight(s, " \t\r\n") == s
	})
	return v
}

type Service struct {
	store    repository.ProfileRepo
	blobs    blob.Store
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func New(store repository.ProfileRepo, blobs blob.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, blobs: blobs, validate: newValidator(), logger: logger, now: time.Now}
}

// Get returns the profile of userID, or nil when the user has not saved one yet.
func (s *Service) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Error("get profile failed", slog.String("user_id", userID), slog.Any("err", err))
		return nil, errorx.Query(err, "get profile")
	}
	return p, nil
}

// Validate checks f without touching any store.
func (s *Service) Validate(f Fields) error {
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if msg, ok := ruleMessages[fe.StructField()+"."+fe.Tag()]; ok {
			return errorx.Validation(msg)
		}
		return errorx.Newf(errorx.KindValidation, "%s is invalid", fe.Field())
	}
	return errorx.Wrap(err, errorx.KindValidation, "invalid profile")
}

// Save validates f, uploads img when present and upserts the row keyed on userID.
// When img is nil the stored image_url is kept.
func (s *Service) Save(ctx context.Context, userID string, f Fields, img *Image) (*models.UserProfile, error) {
	if userID == "" {
		return nil, errorx.Auth("not signed in")
	}
	if err := s.Validate(f); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var imageURL *string
	if img != nil && len(img.Data) > 0 {
		key := blob.NewKey(now, img.Ext)
		url, err := s.blobs.Put(ctx, key, img.ContentType, img.Data)
		if err != nil {
			s.logger.Error("image upload failed", slog.String("user_id", userID), slog.String("key", key), slog.Any("err", err))
			return nil, errorx.Storage(err, "upload image")
		}
		imageURL = &url
	}

	p, err := s.store.UpsertProfile(ctx, &models.UserProfile{
		UserID:      userID,
		Name:        f.Name,
		Major:       f.Major,
		YearOfStudy: f.YearOfStudy,
		Modules:     f.Modules,
		Description: f.Description,
		ImageURL:    imageURL,
		Updated:     now,
	})
	if err != nil {
		s.logger.Error("upsert profile failed", slog.String("user_id", userID), slog.Any("err", err))
		return nil, errorx.Query(err, "save profile")
	}
	return p, nil
}
