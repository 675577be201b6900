package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/movielist/internal/handler"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/service"
)

func decodeProfile(t *testing.T, rr *httptest.ResponseRecorder) service.UserProfile {
	t.Helper()
	var p service.UserProfile
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("decoding profile response: %v", err)
	}
	return p
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	token := api.register(t, "alice")
	assert.NotEmpty(t, token)

	rr := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	var res handler.AuthResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)
	// The password hash must never leak into responses.
	assert.NotContains(t, rr.Body.String(), "password_hash")
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice")

	rr := api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice")

	rr := api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUsers_MeAndUpdate(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	rr := api.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "alice", decodeProfile(t, rr).User.Username)

	rr = api.do(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"email": "new@example.com",
		"bio":   "cinephile",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	updated := decodeProfile(t, rr)
	assert.Equal(t, "new@example.com", updated.User.Email)
	assert.Equal(t, "cinephile", updated.User.Bio)
}

func TestUsers_FollowFlow(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.register(t, "alice")
	api.register(t, "bob")

	rr := api.do(t, http.MethodPost, "/api/users/follow/bob", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var ack handler.AckResponse
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&ack))
	assert.True(t, ack.Success)

	// Repeat follow is a no-op success.
	rr = api.do(t, http.MethodPost, "/api/users/follow/bob", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/users/following", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var following []model.User
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&following))
	if assert.Len(t, following, 1) {
		assert.Equal(t, "bob", following[0].Username)
	}

	// Bob's profile shows the follower.
	rr = api.do(t, http.MethodGet, "/api/users/bob", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeProfile(t, rr).FollowersCount)

	rr = api.do(t, http.MethodPost, "/api/users/unfollow/bob", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, http.MethodGet, "/api/users/following", aliceToken, nil)
	following = nil
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&following))
	assert.Len(t, following, 0)
}

func TestUsers_SelfFollowRejected(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	rr := api.do(t, http.MethodPost, "/api/users/follow/alice", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUsers_FollowUnknownUser(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	rr := api.do(t, http.MethodPost, "/api/users/follow/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUsers_ProfileNotFound(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUsers_Leaderboard(t *testing.T) {
	api := newTestAPI(t)
	aliceToken := api.register(t, "alice")
	bobToken := api.register(t, "bob")

	// Alice watches two movies (6 points) and gains a follower (1 point).
	for _, title := range []string{"One", "Two"} {
		rr := api.do(t, http.MethodPost, "/api/movies/", aliceToken, map[string]any{
			"title":  title,
			"status": "WATCHED",
		})
		assert.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := api.do(t, http.MethodPost, "/api/users/follow/alice", bobToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Leaderboard is public.
	rr = api.do(t, http.MethodGet, "/api/users/leaderboard", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var entries []model.LeaderboardEntry
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "alice", entries[0].Username)
		assert.Equal(t, int64(7), entries[0].Score)
		assert.Equal(t, 1, entries[0].Rank)
		assert.Equal(t, "bob", entries[1].Username)
		assert.Equal(t, int64(0), entries[1].Score)
		assert.Equal(t, 2, entries[1].Rank)
	}
}
