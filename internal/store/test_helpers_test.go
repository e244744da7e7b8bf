package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/topten/internal/movie"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession opens a session that is released when the test ends.
func createTestSession(t *testing.T, s *Store) *Session {
	t.Helper()
	sess, err := s.Session(context.Background())
	if err != nil {
		t.Fatalf("Session() failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

// createTestMovie creates a record with minimal required fields.
func createTestMovie(title string, rating float64) movie.Record {
	return movie.Record{
		Title:       title,
		Year:        2000,
		Description: title + " description",
		Rating:      rating,
		Review:      movie.DefaultReview,
		ImageURL:    "https://image.tmdb.org/t/p/w500/" + title + ".jpg",
	}
}
