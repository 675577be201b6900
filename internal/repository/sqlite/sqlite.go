// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// The domain fits a single-node, single-database deployment: personal lists,
// a small social graph, a leaderboard recomputed on read. An embedded database
// removes a whole class of operational problems, and WAL mode gives us
// concurrent reads while a write is in flight — enough for a web server at
// this scale.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation of
// SQLite — works everywhere Go works.
//
// ATOMICITY NOTE:
// SQLite executes each statement atomically and serializes writers. The
// follow-edge operations lean on this directly: INSERT OR IGNORE and a bare
// DELETE are each a single statement, so concurrent follow/unfollow on the
// same pair always lands in one of the two legal final states.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the sqlite package registers itself with database/sql
	// as a driver named "sqlite" in its init().
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool. The repository interfaces
// (MovieRepository, UserRepository, FollowRepository — see the compile-time
// checks in movie.go, user.go and follow.go) are implemented by the
// MovieRepo, UserRepo and FollowRepo views below.
type DB struct {
	conn *sql.DB
}

// MovieRepo, UserRepo and FollowRepo are typed views of the same DB, one per
// repository interface. Go has no method overloading, so Create(movie) and
// Create(user) — and likewise the two Delete shapes — need distinct receiver
// types; each view carries one interface's method set over the shared
// connection pool.
type (
	MovieRepo  DB
	UserRepo   DB
	FollowRepo DB
)

// Movies returns the MovieRepository view of this database.
func (db *DB) Movies() *MovieRepo { return (*MovieRepo)(db) }

// Users returns the UserRepository view of this database.
func (db *DB) Users() *UserRepo { return (*UserRepo)(db) }

// Follows returns the FollowRepository view of this database.
func (db *DB) Follows() *FollowRepo { return (*FollowRepo)(db) }

// New opens (or creates) the SQLite database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping surfaces a bad path or
	// permissions problem now instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. We need them ON so that
	// deleting a user cascades to their movies and follow edges.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'USER',
			bio           TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// rating is nullable by design: NULL means "not rated", and the service
	// guarantees it is NULL whenever status = 'WISHLIST'.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS movies (
			id              TEXT PRIMARY KEY,
			owner_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title           TEXT NOT NULL,
			genre           TEXT NOT NULL DEFAULT '',
			release_year    INTEGER NOT NULL DEFAULT 0,
			runtime_minutes INTEGER NOT NULL DEFAULT 0,
			poster_url      TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL DEFAULT 'WISHLIST',
			rating          INTEGER,
			review          TEXT NOT NULL DEFAULT '',
			likes_count     INTEGER NOT NULL DEFAULT 0,
			comments_count  INTEGER NOT NULL DEFAULT 0,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_movies_owner_id ON movies(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating movies table: %w", err)
	}

	// The composite primary key enforces "at most one edge per ordered pair";
	// the CHECK enforces "no self-follow" as a last line of defence behind
	// the service-level check.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			followee_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, followee_id),
			CHECK (follower_id <> followee_id)
		);
		CREATE INDEX IF NOT EXISTS idx_follows_followee_id ON follows(followee_id);
	`)
	if err != nil {
		return fmt.Errorf("creating follows table: %w", err)
	}

	return nil
}
