package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/topten/internal/movie"
	"github.com/roach88/topten/internal/store"
	"github.com/roach88/topten/internal/tmdb"
)

// Gateway is the external metadata provider. *tmdb.Client implements it.
type Gateway interface {
	SearchMovies(ctx context.Context, title string) ([]movie.Candidate, error)
	FetchMovie(ctx context.Context, id int64) (movie.Candidate, error)
}

// Next names the view a workflow hands control to.
type Next int

const (
	// NextListing routes to the ranked listing.
	NextListing Next = iota
	// NextEdit routes to the edit form for Outcome.Title.
	NextEdit
)

// String returns the lowercase view name.
func (n Next) String() string {
	switch n {
	case NextListing:
		return "listing"
	case NextEdit:
		return "edit"
	default:
		return fmt.Sprintf("Next(%d)", int(n))
	}
}

// Outcome is the result of confirming a candidate.
type Outcome struct {
	Next    Next
	Title   string
	Created bool
}

// Service runs the workflows. Construct it once at startup.
type Service struct {
	store      *store.Store
	gateway    Gateway
	posterBase string
	logger     *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithPosterBase sets the URL prefix joined to candidate poster paths.
func WithPosterBase(base string) Option {
	return func(s *Service) { s.posterBase = base }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires a Service to its store and gateway.
func NewService(st *store.Store, gw Gateway, opts ...Option) *Service {
	s := &Service{
		store:      st,
		gateway:    gw,
		posterBase: tmdb.DefaultPosterBase,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rank reads every record ordered by rating, assigns ranking = position
// (1 = highest rating) and writes each record back, changed or not.
// It returns the records in ranked order.
func (s *Service) Rank(ctx context.Context) ([]movie.Record, error) {
	sess, err := s.store.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	records, err := sess.ListByRatingDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	for i := range records {
		records[i].Ranking = i + 1
		if err := sess.Update(ctx, records[i]); err != nil {
			return nil, fmt.Errorf("rank %q: %w", records[i].Title, err)
		}
	}

	return records, nil
}

// Search is stage one of selection: validate the typed title and return the
// gateway's candidates. Gateway failures propagate unchanged.
func (s *Service) Search(ctx context.Context, in AddInput) ([]movie.Candidate, error) {
	title, err := in.Validate()
	if err != nil {
		return nil, err
	}

	candidates, err := s.gateway.SearchMovies(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", title, err)
	}
	return candidates, nil
}

// Select is stage two: fetch the chosen candidate and store it as a new
// record. If a record with the same title exists the new one is discarded
// and the outcome routes to the listing; otherwise it routes to the edit
// form for the new title.
func (s *Service) Select(ctx context.Context, externalID int64) (Outcome, error) {
	cand, err := s.gateway.FetchMovie(ctx, externalID)
	if err != nil {
		return Outcome{}, fmt.Errorf("select %d: %w", externalID, err)
	}
	rec := movie.NewRecord(cand, s.posterBase)

	sess, err := s.store.Session(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer sess.Close()

	_, err = sess.FindByTitle(ctx, rec.Title)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "movie already listed", "title", rec.Title, "external_id", externalID)
		return Outcome{Next: NextListing, Title: rec.Title}, nil
	case !errors.Is(err, movie.ErrNotFound):
		return Outcome{}, fmt.Errorf("select %d: %w", externalID, err)
	}

	if err := sess.Create(ctx, &rec); err != nil {
		return Outcome{}, fmt.Errorf("select %d: %w", externalID, err)
	}
	s.logger.InfoContext(ctx, "movie added", "title", rec.Title, "id", rec.ID, "external_id", externalID)

	return Outcome{Next: NextEdit, Title: rec.Title, Created: true}, nil
}

// Edit overwrites the rating and review of the record titled title.
// Returns a *movie.ValidationError for bad input and movie.ErrNotFound when
// no record has that title; the store is unchanged in both cases.
func (s *Service) Edit(ctx context.Context, title string, in EditInput) error {
	values, err := in.Validate()
	if err != nil {
		return err
	}

	sess, err := s.store.Session(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	rec, err := sess.FindByTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}

	rec.Rating = values.Rating
	rec.Review = values.Review
	if err := sess.Update(ctx, rec); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return nil
}

// Delete removes the record titled title.
// Returns movie.ErrNotFound when there is none.
func (s *Service) Delete(ctx context.Context, title string) error {
	sess, err := s.store.Session(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	rec, err := sess.FindByTitle(ctx, title)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := sess.Delete(ctx, rec.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.logger.InfoContext(ctx, "movie deleted", "title", title)
	return nil
}

// Import inserts complete records, skipping titles already stored.
// It reports how many were added and skipped.
func (s *Service) Import(ctx context.Context, records []movie.Record) (added, skipped int, err error) {
	sess, err := s.store.Session(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer sess.Close()

	for _, rec := range records {
		rec.ID = 0
		err := sess.Create(ctx, &rec)
		if errors.Is(err, movie.ErrDuplicateTitle) {
			skipped++
			continue
		}
		if err != nil {
			return added, skipped, fmt.Errorf("import: %w", err)
		}
		added++
	}
	return added, skipped, nil
}
