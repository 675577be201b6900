package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// compile-time check that *FollowRepo implements repository.FollowRepository
var _ repository.FollowRepository = (*FollowRepo)(nil)

// Insert adds a follow edge if it doesn't already exist.
//
// INSERT OR IGNORE is the whole concurrency story here: it's a single atomic
// statement, and SQLite serializes writers, so two concurrent follows of the
// same pair leave exactly one edge and neither caller sees an error. The
// composite primary key on (follower_id, followee_id) is what OR IGNORE
// keys off.
func (db *FollowRepo) Insert(ctx context.Context, followerID, followeeID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows (follower_id, followee_id) VALUES (?, ?)`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("sqlite: inserting follow edge %s -> %s: %w", followerID, followeeID, err)
	}
	return nil
}

// Delete removes a follow edge. Deleting a non-existent edge is a no-op
// success — we deliberately do not check RowsAffected, because unfollow is
// idempotent by contract (a retried unfollow must not surface an error).
func (db *FollowRepo) Delete(ctx context.Context, followerID, followeeID string) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow edge %s -> %s: %w", followerID, followeeID, err)
	}
	return nil
}

// Followers returns all users following userID, ordered by username ascending
// for deterministic output.
func (db *FollowRepo) Followers(ctx context.Context, userID string) ([]model.User, error) {
	return db.queryEdgeUsers(ctx,
		`SELECT `+prefixedUserColumns+`
		 FROM users u
		 JOIN follows f ON f.follower_id = u.id
		 WHERE f.followee_id = ?
		 ORDER BY u.username ASC`,
		userID)
}

// Following returns all users that userID follows, ordered by username ascending.
func (db *FollowRepo) Following(ctx context.Context, userID string) ([]model.User, error) {
	return db.queryEdgeUsers(ctx,
		`SELECT `+prefixedUserColumns+`
		 FROM users u
		 JOIN follows f ON f.followee_id = u.id
		 WHERE f.follower_id = ?
		 ORDER BY u.username ASC`,
		userID)
}

// CountFollowers returns the number of users following userID.
func (db *FollowRepo) CountFollowers(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE followee_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting followers of %s: %w", userID, err)
	}
	return n, nil
}

// CountFollowing returns the number of users that userID follows.
func (db *FollowRepo) CountFollowing(ctx context.Context, userID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting following of %s: %w", userID, err)
	}
	return n, nil
}

const prefixedUserColumns = `u.id, u.username, u.email, u.password_hash, u.role, u.bio, u.created_at, u.updated_at`

func (db *FollowRepo) queryEdgeUsers(ctx context.Context, query, userID string) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying follow edges for %s: %w", userID, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow edge user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating follow edges: %w", err)
	}

	return users, nil
}
