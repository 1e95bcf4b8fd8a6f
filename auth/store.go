package auth

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE COLLATE NOCASE,
	hash     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tokens (
	token      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists users and their session tokens in the shared SQLite
// database.
type Store struct {
	db *sql.DB
}

// NewStore ensures the auth tables exist on db.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create auth schema: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateUser stores a new user with an argon2id-hashed password.
func (s *Store) CreateUser(username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(
		`INSERT INTO users (username, hash) VALUES (?, ?)`, username, hash,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Login verifies the password for username (case-insensitive) and issues a
// new opaque session token. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Store) Login(username, password string) (string, error) {
	var userID int64
	var hash string
	err := s.db.QueryRow(
		`SELECT id, hash FROM users WHERE username = ? COLLATE NOCASE`, username,
	).Scan(&userID, &hash)
	if err == sql.ErrNoRows {
		return "", ErrUserPasswordMismatch
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !verifyPassword(password, hash) {
		return "", ErrUserPasswordMismatch
	}

	token := uuid.NewString()
	if _, err := s.db.Exec(
		`INSERT INTO tokens (token, user_id) VALUES (?, ?)`, token, userID,
	); err != nil {
		return "", fmt.Errorf("insert token: %w", err)
	}
	return token, nil
}

// ValidateToken resolves a session token to its username, or returns
// ErrUnknownToken.
func (s *Store) ValidateToken(token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownToken, err)
	}

	var username string
	err := s.db.QueryRow(
		`SELECT u.username FROM tokens t JOIN users u ON u.id = t.user_id WHERE t.token = ?`,
		token,
	).Scan(&username)
	if err == sql.ErrNoRows {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", fmt.Errorf("look up token: %w", err)
	}
	return username, nil
}
