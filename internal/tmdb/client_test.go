package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/topten/internal/movie"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{Token: "test-token", BaseURL: srv.URL + "/"})
}

func TestSearchMovies_Request(t *testing.T) {
	var gotPath, gotQuery, gotAuth, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"page":1,"results":[]}`))
	})

	_, err := c.SearchMovies(context.Background(), "Dune")
	require.NoError(t, err)

	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, "Dune", gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestSearchMovies_NormalizesQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"results":[]}`))
	})

	// "e" followed by a combining acute accent
	_, err := c.SearchMovies(context.Background(), "Ame\u0301lie")
	require.NoError(t, err)
	assert.Equal(t, "Am\u00e9lie", gotQuery)
}

func TestSearchMovies_DecodesResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"results":[
			{"id":438631,"title":"Dune","original_title":"Dune","release_date":"2021-09-15","poster_path":"/d5NXSklXo0qyIYkgV94XAgMIckC.jpg","overview":"Paul Atreides...","popularity":100.5},
			{"id":841,"title":"Dune","original_title":"Dune","release_date":"1984-12-14","poster_path":null,"overview":"In the year 10,191..."}
		]}`))
	})

	got, err := c.SearchMovies(context.Background(), "Dune")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, movie.Candidate{
		ID:            438631,
		Title:         "Dune",
		OriginalTitle: "Dune",
		ReleaseDate:   "2021-09-15",
		PosterPath:    "/d5NXSklXo0qyIYkgV94XAgMIckC.jpg",
		Overview:      "Paul Atreides...",
	}, got[0])
	assert.Empty(t, got[1].PosterPath)
}

func TestSearchMovies_NoResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1}`))
	})

	got, err := c.SearchMovies(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchMovie(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":2,"title":"New Film","original_title":"New Film","release_date":"2024-03-01","poster_path":"/nf.jpg","overview":"A film."}`))
	})

	got, err := c.FetchMovie(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "/movie/2", gotPath)
	assert.Equal(t, "New Film", got.OriginalTitle)
	assert.Equal(t, "/nf.jpg", got.PosterPath)
}

func TestUpstreamError_Status(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`))
	})

	_, err := c.FetchMovie(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsUpstream(err))

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Equal(t, "fetch", ue.Op)
	assert.Equal(t, "tmdb fetch: status 401: Invalid API key: You must be granted a valid key.", err.Error())
}

func TestUpstreamError_PlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.SearchMovies(context.Background(), "Dune")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "bad gateway", ue.Message)
}

func TestUpstreamError_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.SearchMovies(context.Background(), "Dune")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusOK, ue.StatusCode)
	assert.Contains(t, err.Error(), "decode response")
}

func TestUpstreamError_Transport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.SearchMovies(context.Background(), "Dune")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
	assert.NotNil(t, ue.Unwrap())
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Same(t, http.DefaultClient, c.http)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1})

	_, err := c.SearchMovies(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.SearchMovies(ctx, "second")
	require.Error(t, err)
	assert.False(t, IsUpstream(err), "rate limit waits are not upstream failures")
	assert.Equal(t, 1, calls)
}
