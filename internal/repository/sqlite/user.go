package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// compile-time check that *UserRepo implements repository.UserRepository
var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, password_hash, role, bio, created_at, updated_at`

// Create inserts a new user. Username and email carry UNIQUE constraints, so
// a duplicate registration surfaces as a constraint violation which we
// translate to the domain's Conflict error. We match on the driver's error
// text because modernc.org/sqlite doesn't export a typed constraint error.
func (db *UserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, bio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Bio,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return u, nil
}

// GetByUsername retrieves a user by their unique username.
func (db *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username %s: %w", username, err)
	}

	return u, nil
}

// Update writes the mutable profile fields. Username, role and the password
// hash are managed by dedicated flows; ID and CreatedAt are immutable.
func (db *UserRepo) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET email = ?, bio = ?, updated_at = ? WHERE id = ?`,
		user.Email,
		user.Bio,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// Stats returns one aggregate row per user for leaderboard scoring.
//
// One query, three correlated aggregates. This is a point-in-time snapshot —
// the likes counters are maintained by an external subsystem, so the
// leaderboard tolerates eventually-consistent values by design. Ordering is
// left to the leaderboard service, which owns the ranking rules.
func (db *UserRepo) Stats(ctx context.Context) ([]repository.UserStats, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT u.id, u.username,
		       (SELECT COUNT(*) FROM movies m
		        WHERE m.owner_id = u.id AND m.status = 'WATCHED'),
		       (SELECT COALESCE(SUM(m.likes_count), 0) FROM movies m
		        WHERE m.owner_id = u.id),
		       (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id)
		FROM users u`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying user stats: %w", err)
	}
	defer rows.Close()

	stats := []repository.UserStats{}
	for rows.Next() {
		var s repository.UserStats
		if err := rows.Scan(&s.UserID, &s.Username, &s.WatchedCount,
			&s.LikesReceived, &s.FollowerCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user stats row: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user stats: %w", err)
	}

	return stats, nil
}

func scanUser(scan func(dest ...any) error) (*model.User, error) {
	var (
		u    model.User
		role string
	)

	err := scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = model.Role(role)
	return &u, nil
}
