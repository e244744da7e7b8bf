package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/topten/internal/movie"
)

const movieColumns = `id, title, year, description, rating, ranking, review, img_url`

// Session is a store handle scoped to one unit of work. Every statement
// commits immediately; a Session is not a transaction.
type Session struct {
	conn    *sql.Conn
	dialect dialect
}

// Close releases the session's connection back to the pool.
// Safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Create inserts a new record and sets rec.ID.
// A title that already exists fails with movie.ErrDuplicateTitle; the
// UNIQUE constraint enforces this, the caller is not expected to pre-check.
func (s *Session) Create(ctx context.Context, rec *movie.Record) error {
	err := s.conn.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO movies
		(title, year, description, rating, ranking, review, img_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`),
		rec.Title,
		rec.Year,
		rec.Description,
		rec.Rating,
		rec.Ranking,
		rec.Review,
		rec.ImageURL,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create movie %q: %w", rec.Title, movie.ErrDuplicateTitle)
		}
		return fmt.Errorf("create movie: %w", err)
	}
	return nil
}

// ListByRatingDesc returns all records, highest rating first.
// Ties keep insertion order (id ASC) so repeated reads never reshuffle.
//
// Returns an empty slice (not nil) if the table is empty.
func (s *Session) ListByRatingDesc(ctx context.Context) ([]movie.Record, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		ORDER BY rating DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	records := []movie.Record{}
	for rows.Next() {
		rec, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}

	return records, nil
}

// FindByTitle returns the record whose title matches exactly (case-sensitive).
// Returns movie.ErrNotFound if there is none.
func (s *Session) FindByTitle(ctx context.Context, title string) (movie.Record, error) {
	row := s.conn.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT `+movieColumns+`
		FROM movies
		WHERE title = ?
	`), title)

	rec, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return movie.Record{}, fmt.Errorf("find %q: %w", title, movie.ErrNotFound)
	}
	if err != nil {
		return movie.Record{}, err
	}
	return rec, nil
}

// Update overwrites every mutable column of the record identified by rec.ID.
// Returns movie.ErrNotFound if no row has that id.
func (s *Session) Update(ctx context.Context, rec movie.Record) error {
	result, err := s.conn.ExecContext(ctx, s.dialect.rebind(`
		UPDATE movies
		SET title = ?, year = ?, description = ?, rating = ?, ranking = ?, review = ?, img_url = ?
		WHERE id = ?
	`),
		rec.Title,
		rec.Year,
		rec.Description,
		rec.Rating,
		rec.Ranking,
		rec.Review,
		rec.ImageURL,
		rec.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update movie %d: %w", rec.ID, movie.ErrDuplicateTitle)
		}
		return fmt.Errorf("update movie %d: %w", rec.ID, err)
	}
	return requireRow(result, "update", rec.ID)
}

// Delete removes the record with the given id.
// Returns movie.ErrNotFound if no row has that id.
func (s *Session) Delete(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, s.dialect.rebind(`DELETE FROM movies WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	return requireRow(result, "delete", id)
}

// Count returns the number of stored records.
func (s *Session) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (movie.Record, error) {
	var rec movie.Record
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.Year, &rec.Description,
		&rec.Rating, &rec.Ranking, &rec.Review, &rec.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return movie.Record{}, err
	}
	if err != nil {
		return movie.Record{}, fmt.Errorf("scan movie: %w", err)
	}
	return rec, nil
}

func requireRow(result sql.Result, op string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s movie %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s movie %d: %w", op, id, movie.ErrNotFound)
	}
	return nil
}

// isUniqueViolation recognises UNIQUE constraint failures from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
