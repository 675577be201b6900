package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
)

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo, *mockMovieRepo, *mockFollowRepo) {
	t.Helper()
	users := newMockUserRepo()
	movies := newMockMovieRepo()
	follows := newMockFollowRepo(users)
	svc := NewUserService(users, movies, follows, testLogger())
	return svc, users, movies, follows
}

func TestProfile_Counts(t *testing.T) {
	svc, users, movies, follows := newTestUserService(t)
	ctx := context.Background()

	alice := users.addUser(testUser("user-1", "alice"))
	users.addUser(testUser("user-2", "bob"))
	users.addUser(testUser("user-3", "carol"))

	// Two watched, one wishlist — only watched counts.
	movies.Create(ctx, &model.Movie{OwnerID: alice.ID, Title: "A", Status: model.StatusWatched})
	movies.Create(ctx, &model.Movie{OwnerID: alice.ID, Title: "B", Status: model.StatusWatched})
	movies.Create(ctx, &model.Movie{OwnerID: alice.ID, Title: "C", Status: model.StatusWishlist})

	// bob and carol follow alice; alice follows bob.
	follows.Insert(ctx, "user-2", "user-1")
	follows.Insert(ctx, "user-3", "user-1")
	follows.Insert(ctx, "user-1", "user-2")

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	if profile.User.Username != "alice" {
		t.Errorf("Username = %s, want alice", profile.User.Username)
	}
	if profile.WatchedCount != 2 {
		t.Errorf("WatchedCount = %d, want 2", profile.WatchedCount)
	}
	if profile.FollowersCount != 2 {
		t.Errorf("FollowersCount = %d, want 2", profile.FollowersCount)
	}
	if profile.FollowingCount != 1 {
		t.Errorf("FollowingCount = %d, want 1", profile.FollowingCount)
	}
}

func TestProfile_UnknownUsername(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.Profile(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Profile() error = %v, want ErrNotFound", err)
	}
}

func TestProfileByID(t *testing.T) {
	svc, users, _, _ := newTestUserService(t)
	users.addUser(testUser("user-1", "alice"))

	profile, err := svc.ProfileByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ProfileByID() error = %v", err)
	}
	if profile.User.ID != "user-1" {
		t.Errorf("User.ID = %s, want user-1", profile.User.ID)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, _ := newTestUserService(t)
	alice := users.addUser(testUser("user-1", "alice"))

	profile, err := svc.UpdateProfile(context.Background(), alice, "new@example.com", "  cinephile  ")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if profile.User.Email != "new@example.com" {
		t.Errorf("Email = %q, want new@example.com", profile.User.Email)
	}
	if profile.User.Bio != "cinephile" {
		t.Errorf("Bio = %q, want trimmed %q", profile.User.Bio, "cinephile")
	}

	stored, _ := users.GetByID(context.Background(), "user-1")
	if stored.Email != "new@example.com" {
		t.Errorf("stored Email = %q, update did not persist", stored.Email)
	}
}

func TestUpdateProfile_EmptyEmailKeepsExisting(t *testing.T) {
	svc, users, _, _ := newTestUserService(t)
	alice := testUser("user-1", "alice")
	alice.Email = "alice@example.com"
	users.addUser(alice)

	profile, err := svc.UpdateProfile(context.Background(), alice, "", "bio")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if profile.User.Email != "alice@example.com" {
		t.Errorf("Email = %q, want existing address kept", profile.User.Email)
	}
}

func TestUpdateProfile_NilActor(t *testing.T) {
	svc, _, _, _ := newTestUserService(t)

	_, err := svc.UpdateProfile(context.Background(), nil, "a@example.com", "")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("UpdateProfile() with nil actor error = %v, want ErrForbidden", err)
	}
}
