package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/studybuddy/pkg/models"
	"github.com/garnizeh/studybuddy/pkg/repository"
)

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO accounts (user_id, email, password_hash, created) VALUES (?, ?, ?, ?)`, a.UserID, a.Email, a.PasswordHash, millis(a.Created))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *SQLiteRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := r.conn.QueryRow(ctx, `SELECT user_id, email, password_hash, created FROM accounts WHERE email = ?`, email)
	var a models.Account
	var created int64
	if err := row.Scan(&a.UserID, &a.Email, &a.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}
	a.Created = fromMillis(created)

	return &a, nil
}
