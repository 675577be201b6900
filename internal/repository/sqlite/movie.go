package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// Compile-time check that *MovieRepo implements repository.MovieRepository.
var _ repository.MovieRepository = (*MovieRepo)(nil)

const movieColumns = `id, owner_id, title, genre, release_year, runtime_minutes,
	poster_url, status, rating, review, likes_count, comments_count,
	created_at, updated_at`

// Create inserts a new movie. The pointer receiver matters: Create fills in
// the generated ID and timestamps on the caller's struct, so mutating
// operations can return the post-mutation state without a follow-up read.
//
// IDs come from xid: 20 chars, URL-safe, and sortable by creation time —
// which is why "ORDER BY id" in ListByOwner is insertion order.
func (db *MovieRepo) Create(ctx context.Context, movie *model.Movie) error {
	movie.ID = xid.New().String()

	now := time.Now()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO movies (id, owner_id, title, genre, release_year, runtime_minutes,
		 poster_url, status, rating, review, likes_count, comments_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.ID,
		movie.OwnerID,
		movie.Title,
		movie.Genre,
		movie.ReleaseYear,
		movie.RuntimeMinutes,
		movie.PosterURL,
		string(movie.Status),
		ratingValue(movie.Rating),
		movie.Review,
		movie.LikesCount,
		movie.CommentsCount,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating movie: %w", err)
	}

	return nil
}

// GetByID retrieves a single movie. sql.ErrNoRows is translated to the
// domain's NotFound error so the handler knows to return 404.
func (db *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)

	movie, err := scanMovie(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("movie", id)
		}
		return nil, fmt.Errorf("sqlite: getting movie %s: %w", id, err)
	}

	return movie, nil
}

// ListByOwner returns all of one user's movies, optionally filtered by
// status, ordered by id ascending (stable insertion order).
func (db *MovieRepo) ListByOwner(ctx context.Context, ownerID string, status *model.Status) ([]model.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE owner_id = ?`
	args := []any{ownerID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY id ASC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing movies for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	movies := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning movie row: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating movies: %w", err)
	}

	return movies, nil
}

// Update writes every mutable field in a single atomic statement.
// OwnerID, CreatedAt and the counters are deliberately not written here —
// ownership is immutable and the counters belong to the likes/comments
// subsystem.
func (db *MovieRepo) Update(ctx context.Context, movie *model.Movie) error {
	movie.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE movies
		 SET title = ?, genre = ?, release_year = ?, runtime_minutes = ?,
		     poster_url = ?, status = ?, rating = ?, review = ?, updated_at = ?
		 WHERE id = ?`,
		movie.Title,
		movie.Genre,
		movie.ReleaseYear,
		movie.RuntimeMinutes,
		movie.PosterURL,
		string(movie.Status),
		ratingValue(movie.Rating),
		movie.Review,
		movie.UpdatedAt,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating movie %s: %w", movie.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", movie.ID)
	}

	return nil
}

// Delete removes a movie. RowsAffected distinguishes "deleted" from
// "never existed".
func (db *MovieRepo) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting movie %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("movie", id)
	}

	return nil
}

// scanMovie reads one movie row via the given scan function, converting the
// nullable rating column to *int. Works for both sql.Row and sql.Rows.
func scanMovie(scan func(dest ...any) error) (*model.Movie, error) {
	var (
		m      model.Movie
		status string
		rating sql.NullInt64
	)

	err := scan(
		&m.ID,
		&m.OwnerID,
		&m.Title,
		&m.Genre,
		&m.ReleaseYear,
		&m.RuntimeMinutes,
		&m.PosterURL,
		&status,
		&rating,
		&m.Review,
		&m.LikesCount,
		&m.CommentsCount,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Status = model.Status(status)
	if rating.Valid {
		r := int(rating.Int64)
		m.Rating = &r
	}

	return &m, nil
}

// ratingValue converts *int to the driver's nullable representation.
func ratingValue(rating *int) any {
	if rating == nil {
		return nil
	}
	return *rating
}
