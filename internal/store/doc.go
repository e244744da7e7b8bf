// Package store provides durable storage for topten movie records.
//
// The store is a single relational table, movies, with a UNIQUE title.
// SQLite (github.com/mattn/go-sqlite3) is the default, file-backed backend;
// a postgres:// DSN switches to github.com/lib/pq.
//
// # Sessions
//
// Work happens through a Session, acquired per request with
// (*Store).Session and released with (*Session).Close. Each statement
// commits immediately.
//
// # Ordering
//
// ListByRatingDesc orders by rating DESC, id ASC. The id tiebreak keeps
// equal ratings in insertion order across repeated reads.
//
// # Database Configuration (SQLite)
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
