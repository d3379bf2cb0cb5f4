package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"promotore-backend/internal/shared/storage/db"
)

// SQLRepo stores users in postgres or sqlite depending on Dialect.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

func (r *SQLRepo) Create(ctx context.Context, user User) (User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := `
INSERT INTO users (username, password_hash, full_name, email, created_at)
VALUES (?, ?, ?, ?, ?)`
	args := []any{user.Username, user.PasswordHash, user.FullName, nullableString(user.Email), user.CreatedAt}

	if r.Dialect.SupportsReturning() {
		err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&user.ID)
		if err != nil {
			return User{}, mapInsertErr(err)
		}
		return user, nil
	}

	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return User{}, mapInsertErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	user.ID = id
	return user, nil
}

func (r *SQLRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	query := `
SELECT id, username, password_hash, full_name, email, created_at
FROM users
WHERE username = ?
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), username))
}

func (r *SQLRepo) GetByID(ctx context.Context, userID int64) (User, error) {
	query := `
SELECT id, username, password_hash, full_name, email, created_at
FROM users
WHERE id = ?
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), userID))
}

func (r *SQLRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var email sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.FullName,
		&email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if email.Valid {
		user.Email = email.String
	}
	return user, nil
}

func mapInsertErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return ErrDuplicateUsername
	}
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
