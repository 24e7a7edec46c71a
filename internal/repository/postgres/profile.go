package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/garnizeh/studybuddy/pkg/models"
)

const profileColumns = `user_id, name, major, year_of_study, modules, description, image_url, updated`

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var p models.UserProfile
	var year int16
	if err := row.Scan(&p.UserID, &p.Name, &p.Major, &year, &p.Modules, &p.Description, &p.ImageURL, &p.Updated); err != nil {
		return nil, err
	}
	p.YearOfStudy = int(year)
	return &p, nil
}

func (r *PostgresRepo) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) UpsertProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is nil")
	}

	return scanProfile(r.pool.QueryRow(ctx, `INSERT INTO user_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			major = EXCLUDED.major,
			year_of_study = EXCLUDED.year_of_study,
			modules = EXCLUDED.modules,
			description = EXCLUDED.description,
			image_url = COALESCE(EXCLUDED.image_url, user_profiles.image_url),
			updated = EXCLUDED.updated
		RETURNING `+profileColumns,
		p.UserID, p.Name, p.Major, int16(p.YearOfStudy), p.Modules, p.Description, p.ImageURL, orNow(p.Updated)))
}

func (r *PostgresRepo) ListProfilesByMajor(ctx context.Context, major, excludeUserID string) ([]models.UserProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE major = $1 AND user_id <> $2 ORDER BY id`, major, excludeUserID)
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
