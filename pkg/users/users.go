package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/db"
)

const (
	createUserStatement = `
INSERT INTO users (id, username, email, password_hash, pin_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, '', ?, ?);`

	selectUserColumns = `SELECT id, username, email, password_hash, pin_hash, created_at, updated_at FROM users`

	getUserStatement        = selectUserColumns + ` WHERE id = ?;`
	getUserByLoginStatement = selectUserColumns + ` WHERE username = ? OR email = ? LIMIT 1;`

	setPinHashStatement = `UPDATE users SET pin_hash = ?, updated_at = ? WHERE id = ?;`
	deleteUserStatement = `DELETE FROM users WHERE id = ?;`
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already registered")
)

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var (
		u                    User
		idStr                string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&idStr, &u.Username, &u.Email, &u.PasswordHash, &u.PinHash, &createdAt, &updatedAt); err != nil {
		return User{}, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return User{}, fmt.Errorf("failed to parse user id %q: %w", idStr, err)
	}
	u.ID = id
	u.CreatedAt = time.Unix(0, createdAt).UTC()
	u.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return u, nil
}

// CreateUser inserts a new user with an already hashed password.
func CreateUser(ctx context.Context, conn *sql.DB, username, email, passwordHash string) (User, error) {
	now := time.Now().UTC()
	u := User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := conn.ExecContext(ctx, createUserStatement,
		u.ID.String(), u.Username, u.Email, u.PasswordHash, now.UnixNano(), now.UnixNano())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return u, nil
}

// GetUser loads a user by ID.
func GetUser(ctx context.Context, conn *sql.DB, id uuid.UUID) (User, error) {
	u, err := scanUser(conn.QueryRowContext(ctx, getUserStatement, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByLogin loads a user by username or email. Both comparisons ignore
// ASCII case.
func GetUserByLogin(ctx context.Context, conn *sql.DB, login string) (User, error) {
	u, err := scanUser(conn.QueryRowContext(ctx, getUserByLoginStatement, login, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to get user %q: %w", login, err)
	}
	return u, nil
}

// SetPinHash stores a PIN digest for the user. An empty digest removes the PIN.
func SetPinHash(ctx context.Context, conn *sql.DB, id uuid.UUID, pinHash string) error {
	res, err := conn.ExecContext(ctx, setPinHashStatement, pinHash, time.Now().UTC().UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("failed to set pin for user %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for user %s: %w", id, err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user. Their entries and tag links go with them.
func DeleteUser(ctx context.Context, conn *sql.DB, id uuid.UUID) error {
	res, err := conn.ExecContext(ctx, deleteUserStatement, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows for user %s: %w", id, err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
