package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/model"
)

// Using ":memory:" gives each test an isolated database that disappears when
// the connection closes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user row — movies need an owner because of the
// foreign key on owner_id.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestMovie(t *testing.T, db *DB, ownerID, title string, status model.Status) *model.Movie {
	t.Helper()
	movie := &model.Movie{
		OwnerID: ownerID,
		Title:   title,
		Status:  status,
	}
	if err := db.Movies().Create(context.Background(), movie); err != nil {
		t.Fatalf("failed to create test movie %q: %v", title, err)
	}
	return movie
}

func TestMovieCreate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	movie := &model.Movie{
		OwnerID: owner.ID,
		Title:   "Inception",
		Genre:   "Sci-Fi",
		Status:  model.StatusWishlist,
	}

	if err := db.Movies().Create(context.Background(), movie); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Create fills in the generated fields on the caller's struct.
	if movie.ID == "" {
		t.Error("Create() did not set movie.ID")
	}
	if movie.CreatedAt.IsZero() {
		t.Error("Create() did not set movie.CreatedAt")
	}
}

func TestMovieGetByID_RoundTripsNullRating(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	wishlisted := createTestMovie(t, db, owner.ID, "Dune", model.StatusWishlist)

	rating := 4
	watched := &model.Movie{
		OwnerID: owner.ID,
		Title:   "Arrival",
		Status:  model.StatusWatched,
		Rating:  &rating,
		Review:  "solid",
	}
	if err := db.Movies().Create(context.Background(), watched); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Movies().GetByID(context.Background(), wishlisted.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Rating != nil {
		t.Errorf("wishlist movie Rating = %v, want nil", *got.Rating)
	}

	got, err = db.Movies().GetByID(context.Background(), watched.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Rating == nil || *got.Rating != 4 {
		t.Errorf("watched movie Rating = %v, want 4", got.Rating)
	}
	if got.Review != "solid" {
		t.Errorf("Review = %q, want %q", got.Review, "solid")
	}
}

func TestMovieGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Movies().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestMovieListByOwner_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	// xid is time-ordered, so creation order == id order.
	first := createTestMovie(t, db, alice.ID, "First", model.StatusWishlist)
	second := createTestMovie(t, db, alice.ID, "Second", model.StatusWatched)
	third := createTestMovie(t, db, alice.ID, "Third", model.StatusWishlist)
	createTestMovie(t, db, bob.ID, "Bobs", model.StatusWishlist)

	all, err := db.Movies().ListByOwner(context.Background(), alice.ID, nil)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListByOwner() returned %d movies, want 3", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID || all[2].ID != third.ID {
		t.Error("ListByOwner() not in insertion order")
	}

	wishlist := model.StatusWishlist
	onlyWishlist, err := db.Movies().ListByOwner(context.Background(), alice.ID, &wishlist)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(onlyWishlist) != 2 {
		t.Fatalf("filtered ListByOwner() returned %d movies, want 2", len(onlyWishlist))
	}
	for _, m := range onlyWishlist {
		if m.Status != model.StatusWishlist {
			t.Errorf("movie %q has status %s, want WISHLIST", m.Title, m.Status)
		}
	}
}

func TestMovieListByOwner_EmptyIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	movies, err := db.Movies().ListByOwner(context.Background(), alice.ID, nil)
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(movies) != 0 {
		t.Errorf("ListByOwner() returned %d movies, want 0", len(movies))
	}
}

func TestMovieUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	movie := createTestMovie(t, db, owner.ID, "Inception", model.StatusWishlist)

	rating := 5
	movie.Status = model.StatusWatched
	movie.Rating = &rating
	movie.Review = "great"

	if err := db.Movies().Update(context.Background(), movie); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Movies().GetByID(context.Background(), movie.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != model.StatusWatched {
		t.Errorf("Status = %s, want WATCHED", got.Status)
	}
	if got.Rating == nil || *got.Rating != 5 {
		t.Errorf("Rating = %v, want 5", got.Rating)
	}
}

func TestMovieUpdate_ClearsRatingToNull(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")

	rating := 3
	movie := &model.Movie{
		OwnerID: owner.ID,
		Title:   "Tenet",
		Status:  model.StatusWatched,
		Rating:  &rating,
	}
	if err := db.Movies().Create(context.Background(), movie); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	movie.Status = model.StatusWishlist
	movie.Rating = nil
	movie.Review = ""
	if err := db.Movies().Update(context.Background(), movie); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := db.Movies().GetByID(context.Background(), movie.ID)
	if got.Rating != nil {
		t.Errorf("Rating = %v after clearing, want nil", *got.Rating)
	}
}

func TestMovieUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Movies().Update(context.Background(), &model.Movie{ID: "missing", Title: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestMovieDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "alice")
	movie := createTestMovie(t, db, owner.ID, "Inception", model.StatusWishlist)

	if err := db.Movies().Delete(context.Background(), movie.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Movies().GetByID(context.Background(), movie.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := db.Movies().Delete(context.Background(), movie.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
