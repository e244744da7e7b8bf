package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/topten/internal/movie"
	"github.com/roach88/topten/internal/store"
)

// fakeGateway serves canned candidates and records the calls it receives.
type fakeGateway struct {
	results  map[string][]movie.Candidate
	byID     map[int64]movie.Candidate
	err      error
	searches []string
	fetches  []int64
}

func newFakeGateway(candidates ...movie.Candidate) *fakeGateway {
	g := &fakeGateway{
		results: map[string][]movie.Candidate{},
		byID:    map[int64]movie.Candidate{},
	}
	for _, c := range candidates {
		g.byID[c.ID] = c
		g.results[c.Title] = append(g.results[c.Title], c)
	}
	return g
}

func (g *fakeGateway) SearchMovies(_ context.Context, title string) ([]movie.Candidate, error) {
	g.searches = append(g.searches, title)
	if g.err != nil {
		return nil, g.err
	}
	if r, ok := g.results[title]; ok {
		return r, nil
	}
	return []movie.Candidate{}, nil
}

func (g *fakeGateway) FetchMovie(_ context.Context, id int64) (movie.Candidate, error) {
	g.fetches = append(g.fetches, id)
	if g.err != nil {
		return movie.Candidate{}, g.err
	}
	return g.byID[id], nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// seedRecords inserts records with the given title/rating pairs in order.
func seedRecords(t *testing.T, st *store.Store, recs ...movie.Record) {
	t.Helper()
	ctx := context.Background()
	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	for _, r := range recs {
		if r.Description == "" {
			r.Description = r.Title
		}
		if r.ImageURL == "" {
			r.ImageURL = "https://image.tmdb.org/t/p/w500/" + r.Title + ".jpg"
		}
		if r.Review == "" {
			r.Review = movie.DefaultReview
		}
		require.NoError(t, sess.Create(ctx, &r))
	}
}

// snapshot returns all stored records ordered by rating, without re-ranking.
func snapshot(t *testing.T, st *store.Store) []movie.Record {
	t.Helper()
	ctx := context.Background()
	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	recs, err := sess.ListByRatingDesc(ctx)
	require.NoError(t, err)
	return recs
}

func rankings(recs []movie.Record) map[string]int {
	out := make(map[string]int, len(recs))
	for _, r := range recs {
		out[r.Title] = r.Ranking
	}
	return out
}
