// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier split:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services take explicit actor parameters rather than digging identity out of
// ambient request state. The handler resolves the authenticated user once and
// hands it in, which keeps every authorization rule testable with plain
// function calls.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// Validation constants.
const (
	MinRating = 1
	MaxRating = 5

	MaxTitleLength  = 300
	MaxReviewLength = 10000
)

// MovieInput carries the caller-supplied fields for creating or updating a
// movie. It is deliberately not an HTTP type — handlers build it from JSON,
// and the metadata adapter builds it from provider records.
type MovieInput struct {
	Title          string
	Genre          string
	ReleaseYear    int
	RuntimeMinutes int
	PosterURL      string
	Status         model.Status // empty means WISHLIST on create
	Rating         *int
	Review         string
}

// DeletionListener is notified after a movie has been deleted, so that
// dependent state owned by other subsystems (likes, comments) can be cleaned
// up. Listeners run synchronously after the delete commits.
type DeletionListener func(ctx context.Context, movie *model.Movie)

// MovieService enforces ownership, status transitions, and the
// rating/review invariant: a WISHLIST movie never carries a rating or review.
type MovieService struct {
	movies    repository.MovieRepository
	users     repository.UserRepository
	logger    *slog.Logger
	locks     keyedMutex
	mu        sync.Mutex // guards listeners
	listeners []DeletionListener
}

// NewMovieService creates a MovieService.
func NewMovieService(movies repository.MovieRepository, users repository.UserRepository, logger *slog.Logger) *MovieService {
	return &MovieService{
		movies: movies,
		users:  users,
		logger: logger,
	}
}

// OnDelete registers a listener invoked after each successful movie deletion.
func (s *MovieService) OnDelete(l DeletionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Add creates a movie owned by owner.
//
// Status defaults to WISHLIST. A caller may create directly as WATCHED with a
// rating/review; WATCHED without a rating is allowed (rating stays null).
// A rating or review supplied for a WISHLIST movie is a validation error —
// silently dropping caller data would hide a client bug.
func (s *MovieService) Add(ctx context.Context, in MovieInput, owner *model.User) (*model.Movie, error) {
	if owner == nil {
		return nil, apperror.Forbidden("authentication required")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "movie title is required")
	}
	if len(in.Title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("movie title must be %d characters or less", MaxTitleLength))
	}

	status := in.Status
	if status == "" {
		status = model.StatusWishlist
	}
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be %s or %s", model.StatusWishlist, model.StatusWatched))
	}

	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}
	if len(in.Review) > MaxReviewLength {
		return nil, apperror.ValidationFailed("review",
			fmt.Sprintf("review must be %d characters or less", MaxReviewLength))
	}
	if status == model.StatusWishlist && (in.Rating != nil || in.Review != "") {
		return nil, apperror.ValidationFailed("status",
			"a wishlist movie cannot carry a rating or review")
	}

	movie := &model.Movie{
		OwnerID:        owner.ID,
		Title:          in.Title,
		Genre:          strings.TrimSpace(in.Genre),
		ReleaseYear:    in.ReleaseYear,
		RuntimeMinutes: in.RuntimeMinutes,
		PosterURL:      strings.TrimSpace(in.PosterURL),
		Status:         status,
		Rating:         in.Rating,
		Review:         in.Review,
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		s.logger.Error("failed to create movie",
			slog.String("title", in.Title),
			slog.String("ownerID", owner.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating movie: %w", err)
	}

	s.logger.Info("movie added",
		slog.String("id", movie.ID),
		slog.String("ownerID", owner.ID),
		slog.String("status", string(movie.Status)),
	)

	return movie, nil
}

// Update is a full-field update of an existing movie.
//
// If the update moves the movie to WISHLIST, rating and review are cleared
// regardless of what the request supplied — the invariant takes precedence
// over caller intent. (This is the one write where supplied rating/review may
// be silently discarded, because the transition itself expresses the intent.)
func (s *MovieService) Update(ctx context.Context, id string, in MovieInput, actor *model.User) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "movie ID is required")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationFailed("title", "movie title is required")
	}
	status := in.Status
	if status == "" {
		status = model.StatusWishlist
	}
	if !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be %s or %s", model.StatusWishlist, model.StatusWatched))
	}
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeMutation(movie, actor); err != nil {
		return nil, err
	}

	movie.Title = in.Title
	movie.Genre = strings.TrimSpace(in.Genre)
	movie.ReleaseYear = in.ReleaseYear
	movie.RuntimeMinutes = in.RuntimeMinutes
	movie.PosterURL = strings.TrimSpace(in.PosterURL)
	movie.Status = status
	movie.Rating = in.Rating
	movie.Review = in.Review

	// Invariant: WISHLIST ⇒ no rating, no review.
	if movie.Status == model.StatusWishlist {
		movie.Rating = nil
		movie.Review = ""
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		s.logger.Error("failed to update movie",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating movie: %w", err)
	}

	s.logger.Info("movie updated",
		slog.String("id", movie.ID),
		slog.String("actorID", actor.ID),
	)

	return movie, nil
}

// MarkAsWatched transitions a movie to WATCHED.
//
// The transition is idempotent: re-marking an already-watched movie succeeds
// and overwrites rating/review with whatever was supplied (re-rating is
// allowed). Nil rating/review mean "leave untouched" — on a first transition
// from WISHLIST there is nothing to leave, so they remain null.
func (s *MovieService) MarkAsWatched(ctx context.Context, id string, rating *int, review *string, actor *model.User) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "movie ID is required")
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if review != nil && len(*review) > MaxReviewLength {
		return nil, apperror.ValidationFailed("review",
			fmt.Sprintf("review must be %d characters or less", MaxReviewLength))
	}

	unlock := s.locks.lock(id)
	defer unlock()

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeMutation(movie, actor); err != nil {
		return nil, err
	}

	movie.Status = model.StatusWatched
	if rating != nil {
		movie.Rating = rating
	}
	if review != nil {
		movie.Review = *review
	}

	if err := s.movies.Update(ctx, movie); err != nil {
		s.logger.Error("failed to mark movie as watched",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("marking movie as watched: %w", err)
	}

	s.logger.Info("movie marked as watched",
		slog.String("id", movie.ID),
		slog.String("actorID", actor.ID),
	)

	return movie, nil
}

// Delete removes a movie and notifies deletion listeners so dependent
// likes/comments can be cleaned up by the subsystem that owns them.
func (s *MovieService) Delete(ctx context.Context, id string, actor *model.User) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "movie ID is required")
	}

	unlock := s.locks.lock(id)
	defer unlock()

	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeMutation(movie, actor); err != nil {
		return err
	}

	if err := s.movies.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("movie deleted",
		slog.String("id", id),
		slog.String("actorID", actor.ID),
	)

	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()
	for _, l := range listeners {
		l(ctx, movie)
	}

	return nil
}

// GetByID is a public read — movie details are viewable by anyone.
func (s *MovieService) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "movie ID is required")
	}
	return s.movies.GetByID(ctx, id)
}

// Wishlist returns the owner's wishlist movies in insertion order.
func (s *MovieService) Wishlist(ctx context.Context, owner *model.User) ([]model.Movie, error) {
	return s.listOwn(ctx, owner, model.StatusWishlist)
}

// Watched returns the owner's watched movies in insertion order.
func (s *MovieService) Watched(ctx context.Context, owner *model.User) ([]model.Movie, error) {
	return s.listOwn(ctx, owner, model.StatusWatched)
}

// UserMovies is a public read of another user's movies, optionally filtered
// by status. An existing user with no movies yields an empty slice; an
// unknown userID is a NotFound.
//
// Note this endpoint is intentionally unauthenticated, matching the existing
// contract — it does expose another user's wishlist.
func (s *MovieService) UserMovies(ctx context.Context, userID string, status *model.Status) ([]model.Movie, error) {
	if status != nil && !status.Valid() {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("status must be %s or %s", model.StatusWishlist, model.StatusWatched))
	}

	// Distinguish "user has no movies" (empty list) from "no such user" (404).
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	movies, err := s.movies.ListByOwner(ctx, userID, status)
	if err != nil {
		s.logger.Error("failed to list user movies",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing user movies: %w", err)
	}

	return movies, nil
}

func (s *MovieService) listOwn(ctx context.Context, owner *model.User, status model.Status) ([]model.Movie, error) {
	if owner == nil {
		return nil, apperror.Forbidden("authentication required")
	}

	movies, err := s.movies.ListByOwner(ctx, owner.ID, &status)
	if err != nil {
		s.logger.Error("failed to list movies",
			slog.String("ownerID", owner.ID),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing movies: %w", err)
	}

	return movies, nil
}

// authorizeMutation applies the single mutation rule used throughout:
// an actor may mutate a movie iff they own it or hold the ADMIN role.
func authorizeMutation(movie *model.Movie, actor *model.User) error {
	if actor == nil {
		return apperror.Forbidden("authentication required")
	}
	if actor.ID != movie.OwnerID && !actor.IsAdmin() {
		return apperror.Forbidden("you do not have permission to modify this movie")
	}
	return nil
}

func validateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRating || *rating > MaxRating {
		return apperror.ValidationFailed("rating",
			fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	return nil
}

// keyedMutex serializes mutations per movie ID.
//
// Concurrent read-modify-write sequences on the same movie must not
// interleave (one request clearing rating while another sets it has to
// resolve to one consistent final state). A fixed array of striped mutexes is
// enough: deployments are single-process, movies are independently owned, and
// the worst case of a hash collision is two unrelated movies briefly
// serializing — correct, just momentarily slower.
type keyedMutex struct {
	stripes [64]sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	h := fnv.New32a()
	h.Write([]byte(key))
	m := &k.stripes[h.Sum32()%uint32(len(k.stripes))]
	m.Lock()
	return m.Unlock
}
