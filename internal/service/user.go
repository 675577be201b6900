package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// UserProfile is the public view of a user: the account plus the activity
// counts shown on profile pages.
type UserProfile struct {
	User           model.User `json:"user"`
	WatchedCount   int        `json:"watchedCount"`
	FollowersCount int        `json:"followersCount"`
	FollowingCount int        `json:"followingCount"`
}

// UserService serves user profiles.
type UserService struct {
	users   repository.UserRepository
	movies  repository.MovieRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, movies repository.MovieRepository, follows repository.FollowRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:   users,
		movies:  movies,
		follows: follows,
		logger:  logger,
	}
}

// Profile returns the public profile for username.
func (s *UserService) Profile(ctx context.Context, username string) (*UserProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user)
}

// ProfileByID returns the profile for a user id — used for the "me" endpoint
// where the handler has the authenticated user's id from the token.
func (s *UserService) ProfileByID(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user)
}

// UpdateProfile updates the actor's own mutable profile fields (email, bio).
// Username is the stable public handle and cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, actor *model.User, email, bio string) (*UserProfile, error) {
	if actor == nil {
		return nil, apperror.Forbidden("authentication required")
	}

	email = strings.TrimSpace(email)
	if email != "" {
		actor.Email = email
	}
	actor.Bio = strings.TrimSpace(bio)

	if err := s.users.Update(ctx, actor); err != nil {
		s.logger.Error("failed to update user profile",
			slog.String("userID", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("user profile updated", slog.String("userID", actor.ID))

	return s.buildProfile(ctx, actor)
}

func (s *UserService) buildProfile(ctx context.Context, user *model.User) (*UserProfile, error) {
	watchedStatus := model.StatusWatched
	watched, err := s.movies.ListByOwner(ctx, user.ID, &watchedStatus)
	if err != nil {
		return nil, fmt.Errorf("counting watched movies: %w", err)
	}

	followers, err := s.follows.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("counting followers: %w", err)
	}
	following, err := s.follows.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("counting following: %w", err)
	}

	return &UserProfile{
		User:           *user,
		WatchedCount:   len(watched),
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}
