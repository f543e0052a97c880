package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

// User carries the identity resolved from a session; kept minimal and local
// to avoid a cyclic dependency on the users package.
type User struct {
	Id       int64
	Username string
	Email    string
}

type Repository interface {
	AddSession(userId int64) (token string, err error)
	DeleteSession(token string) error
	GetUserByToken(token string) (User, error)
}

type sessionRepository struct {
	Connection *sql.DB
}

var ErrSessionNotFound = errors.New("session not found")

func NewRepository(connection *sql.DB) Repository {
	return &sessionRepository{connection}
}

// AddSession stores a new opaque session token for the user and returns it.
func (sr *sessionRepository) AddSession(userId int64) (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("couldn't generate a session token: %w", err)
	}

	if _, err = sr.Connection.Exec(
		"INSERT INTO sessions (token, user_id, created) VALUES (?, ?, ?)",
		token.String(), userId, time.Now(),
	); err != nil {
		return "", fmt.Errorf("couldn't store session for user %d: %w", userId, err)
	}
	return token.String(), nil
}

func (sr *sessionRepository) DeleteSession(token string) error {
	result, err := sr.Connection.Exec("DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetUserByToken resolves the user a session token belongs to.
func (sr *sessionRepository) GetUserByToken(token string) (user User, err error) {
	if err = sr.Connection.QueryRow(`
		SELECT users.id, username, email FROM sessions
		JOIN users ON sessions.user_id = users.id
		WHERE token = ?`, token).Scan(&user.Id, &user.Username, &user.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrSessionNotFound
		}
		return user, err
	}
	return user, nil
}
