package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

func (r *PostgresRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (user_id, email, password_hash, created) VALUES ($1, $2, $3, $4)`, a.UserID, a.Email, a.PasswordHash, orNow(a.Created))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *PostgresRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `SELECT user_id, email, password_hash, created FROM accounts WHERE email = $1`, email).
		Scan(&a.UserID, &a.Email, &a.PasswordHash, &a.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
