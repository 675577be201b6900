package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/sakif/movielist/internal/repository"
)

func newTestLeaderboardService(stats []repository.UserStats) *LeaderboardService {
	users := newMockUserRepo()
	users.stats = stats
	return NewLeaderboardService(users, DefaultWeights, testLogger())
}

func TestLeaderboard_ScoringAndOrdering(t *testing.T) {
	// A: 2 watched, 10 likes, 3 followers → 2*3 + 10 + 3 = 19
	// B: 1 watched, 20 likes, 0 followers → 1*3 + 20 + 0 = 23
	// Likes alone can outrank activity; B comes first.
	svc := newTestLeaderboardService([]repository.UserStats{
		{UserID: "user-1", Username: "alice", WatchedCount: 2, LikesReceived: 10, FollowerCount: 3},
		{UserID: "user-2", Username: "bob", WatchedCount: 1, LikesReceived: 20, FollowerCount: 0},
	})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Leaderboard() returned %d entries, want 2", len(entries))
	}

	if entries[0].Username != "bob" || entries[0].Score != 23 || entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want bob with score 23, rank 1", entries[0])
	}
	if entries[1].Username != "alice" || entries[1].Score != 19 || entries[1].Rank != 2 {
		t.Errorf("second entry = %+v, want alice with score 19, rank 2", entries[1])
	}
}

func TestLeaderboard_TieBrokenByUsername(t *testing.T) {
	// Identical scores: ordering falls back to username ascending, and ranks
	// stay sequential (no shared rank numbers).
	svc := newTestLeaderboardService([]repository.UserStats{
		{UserID: "user-1", Username: "zoe", WatchedCount: 1},
		{UserID: "user-2", Username: "amy", WatchedCount: 1},
	})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if entries[0].Username != "amy" || entries[1].Username != "zoe" {
		t.Errorf("tie order = [%s %s], want [amy zoe]", entries[0].Username, entries[1].Username)
	}
	if entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("ranks = [%d %d], want sequential [1 2]", entries[0].Rank, entries[1].Rank)
	}
}

func TestLeaderboard_DeterministicOverUnchangedData(t *testing.T) {
	svc := newTestLeaderboardService([]repository.UserStats{
		{UserID: "user-1", Username: "alice", WatchedCount: 3, LikesReceived: 2, FollowerCount: 1},
		{UserID: "user-2", Username: "bob", WatchedCount: 2, LikesReceived: 5, FollowerCount: 0},
		{UserID: "user-3", Username: "carol", WatchedCount: 4},
	})

	first, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	second, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("second Leaderboard() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("rankings differ across runs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestLeaderboard_ZeroActivityStillRanked(t *testing.T) {
	svc := newTestLeaderboardService([]repository.UserStats{
		{UserID: "user-1", Username: "alice", WatchedCount: 1},
		{UserID: "user-2", Username: "lurker"},
	})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Leaderboard() returned %d entries, want 2 (zero-score users included)", len(entries))
	}
	if entries[1].Username != "lurker" || entries[1].Score != 0 || entries[1].Rank != 2 {
		t.Errorf("last entry = %+v, want lurker with score 0, rank 2", entries[1])
	}
}

func TestLeaderboard_Empty(t *testing.T) {
	svc := newTestLeaderboardService([]repository.UserStats{})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Leaderboard() returned %d entries, want 0", len(entries))
	}
}
