package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// SocialService maintains the directed follow relation between users.
//
// Follow and unfollow are idempotent on purpose: a retried request (double
// click, client retry after a timeout) must not surface as an error just
// because the first attempt already landed. The repository's insert-if-absent
// and delete-if-present statements carry that guarantee down to the store.
type SocialService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	logger  *slog.Logger
}

// NewSocialService creates a SocialService.
func NewSocialService(users repository.UserRepository, follows repository.FollowRepository, logger *slog.Logger) *SocialService {
	return &SocialService{
		users:   users,
		follows: follows,
		logger:  logger,
	}
}

// Follow makes follower follow followee, both given by username.
//
// Fails with NotFound if either username is unknown and with
// InvalidOperation on a self-follow. Following someone you already follow is
// a no-op success.
func (s *SocialService) Follow(ctx context.Context, followerUsername, followeeUsername string) error {
	follower, followee, err := s.resolvePair(ctx, followerUsername, followeeUsername)
	if err != nil {
		return err
	}

	if follower.ID == followee.ID {
		return apperror.InvalidOperation("you cannot follow yourself")
	}

	if err := s.follows.Insert(ctx, follower.ID, followee.ID); err != nil {
		s.logger.Error("failed to insert follow edge",
			slog.String("follower", followerUsername),
			slog.String("followee", followeeUsername),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("following user: %w", err)
	}

	s.logger.Info("follow edge created",
		slog.String("follower", followerUsername),
		slog.String("followee", followeeUsername),
	)

	return nil
}

// Unfollow removes the follower → followee edge. Removing an edge that does
// not exist is a no-op success.
func (s *SocialService) Unfollow(ctx context.Context, followerUsername, followeeUsername string) error {
	follower, followee, err := s.resolvePair(ctx, followerUsername, followeeUsername)
	if err != nil {
		return err
	}

	// A self-unfollow can't correspond to any edge (self-follows are
	// unrepresentable), so it's rejected the same way as a self-follow.
	if follower.ID == followee.ID {
		return apperror.InvalidOperation("you cannot unfollow yourself")
	}

	if err := s.follows.Delete(ctx, follower.ID, followee.ID); err != nil {
		s.logger.Error("failed to delete follow edge",
			slog.String("follower", followerUsername),
			slog.String("followee", followeeUsername),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("unfollowing user: %w", err)
	}

	s.logger.Info("follow edge removed",
		slog.String("follower", followerUsername),
		slog.String("followee", followeeUsername),
	)

	return nil
}

// Followers returns the users following username, ordered by username ascending.
func (s *SocialService) Followers(ctx context.Context, username string) ([]model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.follows.Followers(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	return followers, nil
}

// Following returns the users that username follows, ordered by username ascending.
func (s *SocialService) Following(ctx context.Context, username string) ([]model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	following, err := s.follows.Following(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	return following, nil
}

func (s *SocialService) resolvePair(ctx context.Context, followerUsername, followeeUsername string) (*model.User, *model.User, error) {
	follower, err := s.users.GetByUsername(ctx, followerUsername)
	if err != nil {
		return nil, nil, err
	}
	followee, err := s.users.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, nil, err
	}
	return follower, followee, nil
}
