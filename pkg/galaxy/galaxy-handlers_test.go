package galaxy_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrelle/holonet/pkg/auth"
	"github.com/atrelle/holonet/pkg/comments"
	"github.com/atrelle/holonet/pkg/galaxy"
	"github.com/atrelle/holonet/pkg/rest"
	"github.com/atrelle/holonet/pkg/storage/sqlite"
	"github.com/atrelle/holonet/pkg/users"
)

// newTestServer serves the full route set over a database holding one film, so
// browsing and commenting can be exercised end to end.
func newTestServer(t *testing.T) (server *httptest.Server, client *http.Client) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	storage, err := sqlite.New(logger, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	_, err = storage.Connection.Exec(`
		INSERT INTO films (id, title, episode_id, opening_crawl, director, producer, release_date)
		VALUES (1, 'A New Hope', 4, 'It is a period of civil war.', 'George Lucas',
			'Gary Kurtz, Rick McCallum', '1977-05-25')`)
	require.NoError(t, err)

	engine, err := rest.New(rest.Config{Logger: logger})
	require.NoError(t, err)

	signer := auth.NewSigner("test secret")
	sr := auth.NewRepository(storage.Connection)
	cr := comments.NewRepository(storage.Connection)

	users.RegisterHandlers(engine, users.NewRepository(storage.Connection), sr, signer)
	galaxy.RegisterHandlers(engine, galaxy.NewRepository(storage.Connection), cr, sr, signer)
	comments.RegisterHandlers(engine, cr, sr, signer)

	server = httptest.NewServer(engine.Handler())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return server, &http.Client{Jar: jar}
}

func logIn(t *testing.T, server *httptest.Server, client *http.Client) {
	t.Helper()
	response, err := client.Post(server.URL+"/signup", "application/json", strings.NewReader(
		`{"Username": "obiwan", "Email": "obiwan@example.com", "Password": "hello there"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, response.StatusCode)
	_ = response.Body.Close()

	response, err = client.Post(server.URL+"/login", "application/json", strings.NewReader(
		`{"Username": "obiwan", "Password": "hello there"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	_ = response.Body.Close()
}

func TestFilmDetailWithComments(t *testing.T) {
	server, client := newTestServer(t)
	logIn(t, server, client)

	// commenting requires the session established above
	response, err := client.Post(server.URL+"/films/1", "application/json",
		strings.NewReader(`{"Text": "A classic."}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, response.StatusCode)
	_ = response.Body.Close()

	response, err = client.Get(server.URL + "/films/1")
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var detail struct {
		Entity   galaxy.FilmDetail
		Comments []comments.Comment
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&detail))
	assert.Equal(t, "A New Hope", detail.Entity.Title)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "A classic.", detail.Comments[0].Text)
	assert.Equal(t, "obiwan", detail.Comments[0].AuthorName)
}

func TestCommentRequiresSession(t *testing.T) {
	server, client := newTestServer(t)

	response, err := client.Post(server.URL+"/films/1", "application/json",
		strings.NewReader(`{"Text": "A classic."}`))
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
}

func TestCommentOnMissingEntity(t *testing.T) {
	server, client := newTestServer(t)
	logIn(t, server, client)

	response, err := client.Post(server.URL+"/films/404", "application/json",
		strings.NewReader(`{"Text": "A classic."}`))
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestDetailNotFound(t *testing.T) {
	server, client := newTestServer(t)

	response, err := client.Get(server.URL + "/films/404")
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	server, client := newTestServer(t)

	response, err := client.Get(server.URL + "/search?query=hope")
	require.NoError(t, err)
	defer func() { _ = response.Body.Close() }()
	require.Equal(t, http.StatusOK, response.StatusCode)

	var results galaxy.SearchResults
	require.NoError(t, json.NewDecoder(response.Body).Decode(&results))
	require.Len(t, results.Films, 1)
	assert.Equal(t, "A New Hope", results.Films[0].Name)
	assert.Empty(t, results.People)
}
