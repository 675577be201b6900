// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Status is the position of a movie on its owner's list.
//
// A movie is either still on the wishlist or has been watched. We use a
// string type (not iota ints) so the value reads naturally in JSON and in
// the database without a translation table.
type Status string

const (
	StatusWishlist Status = "WISHLIST"
	StatusWatched  Status = "WATCHED"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusWishlist || s == StatusWatched
}

// Movie represents a record on a user's personal movie list.
//
// WHY Rating *int AND NOT int?
// A rating of 0 and "no rating yet" are different things. The pointer lets us
// represent absence (nil) without reserving a magic value. The invariant is:
// a WISHLIST movie always has Rating == nil and Review == "" — you can't rate
// what you haven't watched. The service layer enforces this on every write.
//
// Review, by contrast, is a plain string with "" meaning "no review" — there
// is no meaningful difference between an empty review and an absent one, so
// we keep the simpler zero value (same reasoning as User.Email).
//
// LikesCount and CommentsCount are owned by the likes/comments subsystem;
// this core only reads them (for leaderboard scoring and responses).
type Movie struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Title          string    `json:"title"`
	Genre          string    `json:"genre,omitempty"`
	ReleaseYear    int       `json:"releaseYear,omitempty"`
	RuntimeMinutes int       `json:"runtimeMinutes,omitempty"`
	PosterURL      string    `json:"posterUrl,omitempty"`
	Status         Status    `json:"status"`
	Rating         *int      `json:"rating"`
	Review         string    `json:"review,omitempty"`
	LikesCount     int64     `json:"likesCount"`
	CommentsCount  int64     `json:"commentsCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
