package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/studybuddy/pkg/models"
)

const profileColumns = `user_id, name, major, year_of_study, modules, description, image_url, updated`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*models.UserProfile, error) {
	var p models.UserProfile
	var img sql.NullString
	var updated int64
	if err := s.Scan(&p.UserID, &p.Name, &p.Major, &p.YearOfStudy, &p.Modules, &p.Description, &img, &updated); err != nil {
		return nil, err
	}
	if img.Valid {
		p.ImageURL = &img.String
	}
	p.Updated = fromMillis(updated)
	return &p, nil
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = ?`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return p, nil
}

func (r *SQLiteRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is nil")
	}

	var img any
	if p.ImageURL != nil {
		img = *p.ImageURL
	}

	row := r.conn.QueryRow(ctx, `INSERT INTO user_profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			name = excluded.name,
			major = excluded.major,
			year_of_study = excluded.year_of_study,
			modules = excluded.modules,
			description = excluded.description,
			image_url = COALESCE(excluded.image_url, user_profiles.image_url),
			updated = excluded.updated
		RETURNING `+profileColumns,
		p.UserID, p.Name, p.Major, p.YearOfStudy, p.Modules, p.Description, img, millis(p.Updated))

	return scanProfile(row)
}

func (r *SQLiteRepo) ListProfilesByMajor(ctx context.Context, major, excludeUserID string) ([]models.UserProfile, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE major = ? AND user_id <> ? ORDER BY id`, major, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *p)
	}

	return out, rows.Err()
}
