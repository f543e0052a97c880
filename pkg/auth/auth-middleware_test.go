package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/storage/sqlite"
)

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	now := time.Now()
	_, err = storage.Connection.Exec(`
		INSERT INTO users (id, username, email, password, created, updated)
		VALUES (1, 'luke', 'luke@example.com', 'irrelevant', ?, ?)`, now, now)
	require.NoError(t, err)

	return storage
}

func TestSignerRoundTrip(t *testing.T) {
	signer := auth.NewSigner("secret")

	value := signer.Sign("some-token")
	token, err := signer.Verify(value)
	require.NoError(t, err)
	assert.Equal(t, "some-token", token)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := auth.NewSigner("secret")

	value := signer.Sign("some-token")

	// altering the embedded token invalidates the signature
	_, err := signer.Verify("other-token" + value[len("some-token"):])
	assert.ErrorIs(t, err, auth.ErrBadSignature)

	// so does signing with a different secret
	_, err = signer.Verify(auth.NewSigner("other secret").Sign("some-token"))
	assert.ErrorIs(t, err, auth.ErrBadSignature)

	_, err = signer.Verify("no separator")
	assert.ErrorIs(t, err, auth.ErrBadSignature)
}

func TestSessionLifecycle(t *testing.T) {
	storage := newTestStorage(t)
	sr := auth.NewRepository(storage.Connection)

	token, err := sr.AddSession(1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := sr.GetUserByToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.Id)
	assert.Equal(t, "luke", user.Username)

	require.NoError(t, sr.DeleteSession(token))

	_, err = sr.GetUserByToken(token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.ErrorIs(t, sr.DeleteSession(token), auth.ErrSessionNotFound)
}

func TestAuthMiddleware(t *testing.T) {
	storage := newTestStorage(t)
	sr := auth.NewRepository(storage.Connection)
	signer := auth.NewSigner("secret")

	token, err := sr.AddSession(1)
	require.NoError(t, err)

	var seen auth.User
	guarded := auth.Auth(sr, signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.MustGetUser(r)
	}))

	// a signed cookie resolves the user
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signer.Sign(token)})
	recorder := httptest.NewRecorder()
	guarded.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "luke", seen.Username)

	// no cookie
	recorder = httptest.NewRecorder()
	guarded.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// an unsigned raw token
	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	recorder = httptest.NewRecorder()
	guarded.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// a well-signed token with no backing session
	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: auth.CookieName, Value: signer.Sign("revoked")})
	recorder = httptest.NewRecorder()
	guarded.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
