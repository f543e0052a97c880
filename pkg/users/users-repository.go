package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Register(data SignupData) (*User, error)
	Authenticate(username, password string) (*User, error)
	GetUserById(id int64) (User, error)
	Update(userId int64, data UpdateUserData) error
	Delete(userId int64) error
	GetComments(userId int64) ([]ProfileComment, error)
}

type userRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username is already taken")
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrWrongPassword     = errors.New("wrong password")
	ErrLoginFailed       = errors.New("wrong username or password")
)

func NewRepository(connection *sql.DB) UserRepository {
	return &userRepository{connection}
}

// Register hashes the password and adds the user, detecting duplicate
// usernames and emails through the table's unique constraints.
func (ur *userRepository) Register(data SignupData) (*User, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("couldn't hash password for %q: %w", data.Username, err)
	}

	var now = time.Now()
	result, err := ur.Connection.Exec(
		"INSERT INTO users (username, email, password, created, updated) VALUES (?, ?, ?, ?, ?)",
		data.Username, data.Email, string(hash), now, now)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("couldn't add user %q: %w", data.Username, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &User{
		Id:       id,
		Username: data.Username,
		Email:    data.Email,
		Created:  now,
		Updated:  now,
	}, nil
}

// duplicateError maps a unique constraint violation to the duplicate
// username or email sentinel, or returns nil for unrelated errors.
func duplicateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		if strings.Contains(sqliteErr.Error(), "users.email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateUsername
	}
	return nil
}

// Authenticate looks up the user by exact username and verifies the password
// hash; lookup misses and hash mismatches yield the same failure, denying
// hints about which of the two was wrong.
func (ur *userRepository) Authenticate(username, password string) (*User, error) {
	var user User
	var hash string
	err := ur.Connection.QueryRow(
		"SELECT id, username, email, password, created, updated FROM users WHERE username = ?",
		username).Scan(&user.Id, &user.Username, &user.Email, &hash, &user.Created, &user.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLoginFailed
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrLoginFailed
	}
	return &user, nil
}

func (ur *userRepository) GetUserById(id int64) (user User, err error) {
	if err = ur.Connection.QueryRow(
		"SELECT id, username, email, created, updated FROM users WHERE id = ?",
		id).Scan(&user.Id, &user.Username, &user.Email, &user.Created, &user.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}
	return user, nil
}

// Update applies an account edit after verifying the current password. The
// whole edit runs in one transaction so a late failure leaves no partial
// change behind.
func (ur *userRepository) Update(userId int64, data UpdateUserData) error {
	tx, err := ur.Connection.Begin()
	if err != nil {
		return err
	}

	// rolling back after a commit is a safe NOP
	defer func() { _ = tx.Rollback() }()

	var hash string
	if err = tx.QueryRow("SELECT password FROM users WHERE id = ?", userId).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(data.Password)) != nil {
		return ErrWrongPassword
	}

	if _, err = tx.Exec(
		"UPDATE users SET username = ?, email = ?, updated = ? WHERE id = ?",
		data.Username, data.Email, time.Now(), userId); err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return err
	}

	if data.NewPassword != "" {
		newHash, err := bcrypt.GenerateFromPassword([]byte(data.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err = tx.Exec("UPDATE users SET password = ? WHERE id = ?", string(newHash), userId); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes the user and everything they authored. Foreign key cascades
// take care of their sessions, comments and votes; the counters on other
// users' comments the deleted user voted on are repaired first, inside the
// same transaction, so tallies never drift from the votes table.
func (ur *userRepository) Delete(userId int64) error {
	tx, err := ur.Connection.Begin()
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	if _, err = tx.Exec(`
		UPDATE comments SET upvotes = upvotes - 1
		WHERE id IN (SELECT comment_id FROM comment_votes WHERE user_id = ? AND vote = TRUE)`,
		userId); err != nil {
		return err
	}

	if _, err = tx.Exec(`
		UPDATE comments SET downvotes = downvotes - 1
		WHERE id IN (SELECT comment_id FROM comment_votes WHERE user_id = ? AND vote = FALSE)`,
		userId); err != nil {
		return err
	}

	result, err := tx.Exec("DELETE FROM users WHERE id = ?", userId)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// GetComments returns the user's comments, each resolved to the display name
// of the one entity it targets, newest first.
func (ur *userRepository) GetComments(userId int64) ([]ProfileComment, error) {

	// initialise an empty slice to avoid null serialisation
	var comments = make([]ProfileComment, 0)

	rows, err := ur.Connection.Query(`
		SELECT c.id, c.text, c.upvotes, c.downvotes, c.created,
			CASE
				WHEN c.person_id IS NOT NULL THEN 'person'
				WHEN c.film_id IS NOT NULL THEN 'film'
				WHEN c.starship_id IS NOT NULL THEN 'starship'
				WHEN c.vehicle_id IS NOT NULL THEN 'vehicle'
				WHEN c.species_id IS NOT NULL THEN 'species'
				ELSE 'planet'
			END AS target_type,
			COALESCE(c.person_id, c.film_id, c.starship_id, c.vehicle_id, c.species_id, c.planet_id) AS target_id,
			COALESCE(p.name, f.title, s.name, v.name, sp.name, pl.name) AS target_name
		FROM comments c
		LEFT JOIN people p ON c.person_id = p.id
		LEFT JOIN films f ON c.film_id = f.id
		LEFT JOIN starships s ON c.starship_id = s.id
		LEFT JOIN vehicles v ON c.vehicle_id = v.id
		LEFT JOIN species sp ON c.species_id = sp.id
		LEFT JOIN planets pl ON c.planet_id = pl.id
		WHERE c.user_id = ?
		ORDER BY c.created DESC`,
		userId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var comment ProfileComment
		if err = rows.Scan(&comment.Id, &comment.Text, &comment.Upvotes, &comment.Downvotes,
			&comment.Created, &comment.TargetType, &comment.TargetId, &comment.TargetName); err != nil {
			return comments, err
		}
		comments = append(comments, comment)
	}

	if err = rows.Err(); err != nil {
		return comments, err
	}
	if err = rows.Close(); err != nil {
		return comments, err
	}

	return comments, nil
}
