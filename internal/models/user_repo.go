package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

const userColumns = "id, first_name, last_name, email, password, phone, address, is_active, created_at, updated_at"

func (r *SQLRepo) CreateUser(ctx context.Context, user *User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	id, err := insertReturningID(ctx, r.db, `INSERT INTO users
		(first_name, last_name, email, password, phone, address, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, strings.ToLower(user.Email), user.Password,
		user.Phone, user.Address, user.IsActive, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	user.Email = strings.ToLower(user.Email)
	return id, nil
}

func (r *SQLRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *SQLRepo) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ? AND is_active = ?`), id, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// UpdateUser writes the profile columns of user. The password is not touched.
func (r *SQLRepo) UpdateUser(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC()
	user.Email = strings.ToLower(user.Email)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users
		SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ?, updated_at = ?
		WHERE id = ? AND is_active = ?`),
		user.FirstName, user.LastName, user.Email, user.Phone, user.Address, user.UpdatedAt, user.ID, true)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectAffected(res)
}

func (r *SQLRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET password = ?, updated_at = ? WHERE id = ? AND is_active = ?`),
		passwordHash, time.Now().UTC(), id, true)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectAffected(res)
}

// expectAffected maps a zero-row UPDATE to ErrRecordNotFound. On MySQL this
// relies on the DSN setting clientFoundRows, otherwise an UPDATE that matches
// a row without changing it reports 0.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
