package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// Weights configure leaderboard scoring:
//
//	score = watchedCount*Watched + likesReceived*Likes + followerCount*Followers
//
// A user's own activity should dominate raw popularity, so the constraint is
// Watched >= Likes >= Followers. The values are read once per computation, so
// a single ranking is always internally consistent.
type Weights struct {
	Watched   int64
	Likes     int64
	Followers int64
}

// DefaultWeights is the stock scoring configuration: watching a movie is
// worth three points, each like received and each follower one.
var DefaultWeights = Weights{Watched: 3, Likes: 1, Followers: 1}

// LeaderboardService derives a ranked view of all users from movie and
// follow-graph aggregates. It holds no state of its own — every call is a
// fresh, side-effect-free projection over current data. At this data volume
// recomputing beats maintaining an incremental ranking that could drift.
type LeaderboardService struct {
	users   repository.UserRepository
	weights Weights
	logger  *slog.Logger
}

// NewLeaderboardService creates a LeaderboardService with the given weights.
func NewLeaderboardService(users repository.UserRepository, weights Weights, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{
		users:   users,
		weights: weights,
		logger:  logger,
	}
}

// Leaderboard returns every user ranked by score.
//
// Ordering is a strict total order: score descending, ties broken by
// username ascending. Because the tie-break is strict, equal scores still get
// distinct successive rank numbers — rank is the 1-based position, not a
// dense competition rank. Re-running over unchanged data yields an identical
// ordering, which keeps pagination reproducible.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	stats, err := s.users.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to load user stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}

	entries := make([]model.LeaderboardEntry, 0, len(stats))
	for _, st := range stats {
		entries = append(entries, model.LeaderboardEntry{
			UserID:   st.UserID,
			Username: st.Username,
			Score:    s.score(st),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Username < entries[j].Username
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

func (s *LeaderboardService) score(st repository.UserStats) int64 {
	return int64(st.WatchedCount)*s.weights.Watched +
		st.LikesReceived*s.weights.Likes +
		int64(st.FollowerCount)*s.weights.Followers
}
