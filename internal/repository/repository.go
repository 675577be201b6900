// Package repository declares the persistence interfaces consumed by the
// service layer. Services depend on these interfaces, never on the concrete
// SQLite implementation — tests inject in-memory mocks instead.
package repository

import (
	"context"

	"github.com/sakif/movielist/internal/model"
)

// MovieRepository stores movie records keyed by id.
//
// Each method is a single atomic operation against the store. The service
// layer composes them into read-modify-write sequences and provides its own
// per-movie serialization; the repository's contract is only that each call
// is all-or-nothing.
type MovieRepository interface {
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	// ListByOwner returns the owner's movies, optionally filtered by status,
	// ordered by id ascending (xid ids sort by creation time, so this is
	// insertion order).
	ListByOwner(ctx context.Context, ownerID string, status *model.Status) ([]model.Movie, error)
	Update(ctx context.Context, movie *model.Movie) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	// Stats returns one aggregate row per user: watched-movie count, total
	// likes received across their movies, and follower count. This is the
	// leaderboard's input; it's a snapshot, not a transaction.
	Stats(ctx context.Context) ([]UserStats, error)
}

// FollowRepository maintains the directed follow relation.
//
// Insert and Delete are idempotent at the store level: inserting an existing
// edge and deleting a missing one both succeed without changing state. That
// makes a concurrent follow+unfollow race resolve to exactly one of the two
// final states with no duplicate edge and no spurious error.
type FollowRepository interface {
	Insert(ctx context.Context, followerID, followeeID string) error
	Delete(ctx context.Context, followerID, followeeID string) error
	// Followers returns users with an edge (*, userID), ordered by username
	// ascending. Following is the symmetric view.
	Followers(ctx context.Context, userID string) ([]model.User, error)
	Following(ctx context.Context, userID string) ([]model.User, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
}

// UserStats is the per-user aggregate the leaderboard scores from.
type UserStats struct {
	UserID        string
	Username      string
	WatchedCount  int
	LikesReceived int64
	FollowerCount int
}
