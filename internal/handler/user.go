package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/movielist/internal/repository"
	"github.com/sakif/movielist/internal/service"
)

// UserHandler exposes profiles, the follow graph, and the leaderboard.
//
//	GET  /api/users/me                  own profile          (auth)
//	PUT  /api/users/me                  update own profile   (auth)
//	GET  /api/users/leaderboard         ranked users         (public)
//	GET  /api/users/{username}          public profile       (public)
//	POST /api/users/follow/{username}   follow               (auth)
//	POST /api/users/unfollow/{username} unfollow             (auth)
//	GET  /api/users/followers           own followers        (auth)
//	GET  /api/users/following           own following        (auth)
type UserHandler struct {
	profiles    *service.UserService
	social      *service.SocialService
	leaderboard *service.LeaderboardService
	users       repository.UserRepository
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(
	profiles *service.UserService,
	social *service.SocialService,
	leaderboard *service.LeaderboardService,
	users repository.UserRepository,
	validate *validator.Validate,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		profiles:    profiles,
		social:      social,
		leaderboard: leaderboard,
		users:       users,
		validate:    validate,
		logger:      logger,
	}
}

// ProfileRequest is the JSON body for updating one's own profile.
type ProfileRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	Bio   string `json:"bio" validate:"max=500"`
}

// AckResponse acknowledges mutations that return no entity (follow/unfollow).
type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleMe returns the caller's own profile.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.ProfileByID(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateMe updates the caller's email/bio.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), actor, req.Email, req.Bio)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleProfile returns a public profile by username.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Profile(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleFollow makes the caller follow {username}.
func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	followee := r.PathValue("username")
	if err := h.social.Follow(r.Context(), actor.Username, followee); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AckResponse{Success: true, Message: "You are now following " + followee})
}

// HandleUnfollow removes the caller's follow of {username}.
func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	followee := r.PathValue("username")
	if err := h.social.Unfollow(r.Context(), actor.Username, followee); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AckResponse{Success: true, Message: "You have unfollowed " + followee})
}

// HandleFollowers lists the caller's followers.
func (h *UserHandler) HandleFollowers(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	followers, err := h.social.Followers(r.Context(), actor.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, followers)
}

// HandleFollowing lists who the caller follows.
func (h *UserHandler) HandleFollowing(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	following, err := h.social.Following(r.Context(), actor.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, following)
}

// HandleLeaderboard returns the ranked list of all users. Public.
func (h *UserHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
