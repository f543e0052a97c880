package users_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrelle/holonet/pkg/storage/sqlite"
	"github.com/atrelle/holonet/pkg/users"
)

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func register(t *testing.T, ur users.UserRepository, username string) *users.User {
	t.Helper()
	user, err := ur.Register(users.SignupData{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndAuthenticate(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)

	registered := register(t, ur, "obiwan")
	assert.Positive(t, registered.Id)

	authenticated, err := ur.Authenticate("obiwan", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.Id, authenticated.Id)
	assert.Equal(t, "obiwan@example.com", authenticated.Email)

	// the stored password is a hash, never the cleartext
	var stored string
	require.NoError(t, storage.Connection.QueryRow(
		"SELECT password FROM users WHERE id = ?", registered.Id).Scan(&stored))
	assert.NotEqual(t, "correct horse", stored)
}

func TestAuthenticateFailures(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	register(t, ur, "obiwan")

	// unknown users and wrong passwords yield the very same error
	_, err := ur.Authenticate("obiwan", "wrong password")
	assert.ErrorIs(t, err, users.ErrLoginFailed)

	_, err = ur.Authenticate("anakin", "correct horse")
	assert.ErrorIs(t, err, users.ErrLoginFailed)
}

func TestRegisterDuplicates(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	register(t, ur, "obiwan")

	_, err := ur.Register(users.SignupData{
		Username: "obiwan", Email: "other@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, users.ErrDuplicateUsername)

	_, err = ur.Register(users.SignupData{
		Username: "kenobi", Email: "obiwan@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, users.ErrDuplicateEmail)
}

func TestUpdate(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	user := register(t, ur, "obiwan")

	err := ur.Update(user.Id, users.UpdateUserData{
		Username:    "kenobi",
		Email:       "kenobi@example.com",
		Password:    "correct horse",
		NewPassword: "hello there",
	})
	require.NoError(t, err)

	// the old credentials no longer authenticate, the new ones do
	_, err = ur.Authenticate("obiwan", "correct horse")
	assert.ErrorIs(t, err, users.ErrLoginFailed)

	updated, err := ur.Authenticate("kenobi", "hello there")
	require.NoError(t, err)
	assert.Equal(t, user.Id, updated.Id)
}

func TestUpdateRequiresCurrentPassword(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	user := register(t, ur, "obiwan")

	err := ur.Update(user.Id, users.UpdateUserData{
		Username: "kenobi",
		Email:    "kenobi@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, users.ErrWrongPassword)

	// nothing changed
	fetched, err := ur.GetUserById(user.Id)
	require.NoError(t, err)
	assert.Equal(t, "obiwan", fetched.Username)
}

func TestUpdateToTakenUsername(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	register(t, ur, "obiwan")
	user := register(t, ur, "anakin")

	err := ur.Update(user.Id, users.UpdateUserData{
		Username: "obiwan",
		Email:    "anakin@example.com",
		Password: "correct horse",
	})
	assert.ErrorIs(t, err, users.ErrDuplicateUsername)
}

func TestDeleteCascadesAndRepairsCounters(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	author := register(t, ur, "obiwan")
	voter := register(t, ur, "anakin")

	now := time.Now()
	_, err := storage.Connection.Exec("INSERT INTO films (id, title) VALUES (1, 'A New Hope')")
	require.NoError(t, err)

	// the surviving author's comment carries an upvote from the soon-deleted voter
	_, err = storage.Connection.Exec(`
		INSERT INTO comments (id, text, user_id, film_id, upvotes, created)
		VALUES (1, 'Unlearn what you have learned.', ?, 1, 1, ?)`, author.Id, now)
	require.NoError(t, err)
	_, err = storage.Connection.Exec(
		"INSERT INTO comment_votes (comment_id, user_id, vote) VALUES (1, ?, TRUE)", voter.Id)
	require.NoError(t, err)

	// the voter's own comment disappears entirely
	_, err = storage.Connection.Exec(`
		INSERT INTO comments (id, text, user_id, film_id, created)
		VALUES (2, 'Overrated.', ?, 1, ?)`, voter.Id, now)
	require.NoError(t, err)

	require.NoError(t, ur.Delete(voter.Id))

	_, err = ur.GetUserById(voter.Id)
	assert.ErrorIs(t, err, users.ErrNotFound)

	var commentCount int
	require.NoError(t, storage.Connection.QueryRow(
		"SELECT count(*) FROM comments WHERE user_id = ?", voter.Id).Scan(&commentCount))
	assert.Zero(t, commentCount)

	var voteCount int
	require.NoError(t, storage.Connection.QueryRow(
		"SELECT count(*) FROM comment_votes WHERE user_id = ?", voter.Id).Scan(&voteCount))
	assert.Zero(t, voteCount)

	// the author's comment lost the deleted user's upvote
	var upvotes int
	require.NoError(t, storage.Connection.QueryRow(
		"SELECT upvotes FROM comments WHERE id = 1").Scan(&upvotes))
	assert.Zero(t, upvotes)
}

func TestDeleteMissingUser(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)

	assert.ErrorIs(t, ur.Delete(404), users.ErrNotFound)
}

func TestGetComments(t *testing.T) {
	storage := newTestStorage(t)
	ur := users.NewRepository(storage.Connection)
	user := register(t, ur, "obiwan")

	_, err := storage.Connection.Exec(`
		INSERT INTO films (id, title) VALUES (1, 'A New Hope');
		INSERT INTO planets (id, name) VALUES (1, 'Tatooine');`)
	require.NoError(t, err)

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	_, err = storage.Connection.Exec(`
		INSERT INTO comments (text, user_id, film_id, created) VALUES ('First.', ?, 1, ?)`,
		user.Id, older)
	require.NoError(t, err)
	_, err = storage.Connection.Exec(`
		INSERT INTO comments (text, user_id, planet_id, created) VALUES ('Dusty.', ?, 1, ?)`,
		user.Id, newer)
	require.NoError(t, err)

	fetched, err := ur.GetComments(user.Id)
	require.NoError(t, err)
	require.Len(t, fetched, 2)

	// newest first, each resolved to its target
	assert.Equal(t, "Dusty.", fetched[0].Text)
	assert.Equal(t, "planet", fetched[0].TargetType)
	assert.Equal(t, "Tatooine", fetched[0].TargetName)

	assert.Equal(t, "First.", fetched[1].Text)
	assert.Equal(t, "film", fetched[1].TargetType)
	assert.Equal(t, "A New Hope", fetched[1].TargetName)
}
