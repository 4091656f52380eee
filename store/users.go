package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"notes-backend/db"
	"notes-backend/models"
)

const userColumns = "id, email, password_hash, is_active, created_at"

type Users struct {
	s *Store
}

// Create inserts an active user. A taken email yields models.ErrConflict.
func (u *Users) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    u.s.stamp(),
	}
	err := u.s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, u.s.dialect.Rebind("SELECT 1 FROM users WHERE email = ?"), email).Scan(&exists)
		if err == nil {
			return models.ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check email: %w", err)
		}

		id, err := u.s.insertID(ctx, tx,
			"INSERT INTO users (email, password_hash, is_active, created_at) VALUES (?, ?, ?, ?)",
			user.Email, user.PasswordHash, user.Active, db.ToMicros(user.CreatedAt))
		if err != nil {
			if u.s.dialect.IsUniqueViolation(err) {
				return models.ErrConflict
			}
			return fmt.Errorf("insert user: %w", err)
		}
		user.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := u.s.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, u.s.dialect.Rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
		var err error
		user, err = scanUser(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive flips the active flag. Inactive users cannot authenticate. It is
// not exposed over HTTP.
func (u *Users) SetActive(ctx context.Context, id int64, active bool) error {
	return u.s.inTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, u.s.dialect.Rebind("SELECT id FROM users WHERE id = ?"+u.s.dialect.ForUpdate()), id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		if _, err := tx.ExecContext(ctx, u.s.dialect.Rebind("UPDATE users SET is_active = ? WHERE id = ?"), active, id); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

// Delete removes the user and every note they own in one transaction.
func (u *Users) Delete(ctx context.Context, id int64) error {
	return u.s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, u.s.dialect.Rebind("DELETE FROM notes WHERE owner_id = ?"), id); err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		res, err := tx.ExecContext(ctx, u.s.dialect.Rebind("DELETE FROM users WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if affected == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

func scanUser(row scanner) (*models.User, error) {
	var user models.User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = db.FromMicros(createdAt)
	return &user, nil
}
