package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreviews/pkg/database"
)

var ErrUsernameTaken = errors.New("username already exists")

type User struct {
	ID       int64
	Username string
	Hash     string
}

// Session is the server-side half of a login; the cookie only names it.
type Session struct {
	ID        string
	UserID    int64
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Repo struct {
	DB *database.DB
}

func NewRepo(db *database.DB) *Repo {
	return &Repo{DB: db}
}

// CreateUser inserts a user and returns it with its generated id. A unique
// constraint failure (lost check-then-insert race) returns ErrUsernameTaken.
func (r *Repo) CreateUser(ctx context.Context, username, hash string) (*User, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, hash)
		VALUES (?, ?)
		RETURNING id
	`, username, hash).Scan(&id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &User{ID: id, Username: username, Hash: hash}, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, hash
		FROM users
		WHERE username = ?
	`, strings.TrimSpace(username))

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by username: %w", err)
	}
	return &u, nil
}

func (r *Repo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE username = ?
	`, strings.TrimSpace(username)).Scan(&n); err != nil {
		return false, fmt.Errorf("count username: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) CreateSession(ctx context.Context, s Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.Username, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *Repo) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, username, created_at, expires_at
		FROM sessions
		WHERE id = ?
	`, id)

	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Username, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *Repo) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
