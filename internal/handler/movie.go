package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
	"github.com/sakif/movielist/internal/service"
)

// MovieHandler exposes the movie-list endpoints.
//
// Route map (wired in internal/server):
//
//	GET    /api/movies/wishlist          own wishlist            (auth)
//	GET    /api/movies/watched           own watched list        (auth)
//	GET    /api/movies/{id}              movie details           (public)
//	POST   /api/movies                   add a movie             (auth)
//	PUT    /api/movies/{id}              full update             (auth)
//	PUT    /api/movies/{id}/mark-watched watched transition      (auth)
//	DELETE /api/movies/{id}              delete                  (auth)
//	GET    /api/movies/user/{userId}     another user's movies   (public)
type MovieHandler struct {
	movies   *service.MovieService
	users    repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewMovieHandler creates a MovieHandler.
func NewMovieHandler(movies *service.MovieService, users repository.UserRepository, validate *validator.Validate, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{
		movies:   movies,
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

// MovieRequest is the JSON body for creating/updating a movie. The validator
// tags catch shape errors early; business rules (wishlist can't carry a
// rating, ownership) stay in the service.
type MovieRequest struct {
	Title          string `json:"title" validate:"required,max=300"`
	Genre          string `json:"genre" validate:"max=100"`
	ReleaseYear    int    `json:"releaseYear" validate:"omitempty,gte=1870,lte=2200"`
	RuntimeMinutes int    `json:"runtimeMinutes" validate:"omitempty,gte=0"`
	PosterURL      string `json:"posterUrl" validate:"omitempty,url"`
	Status         string `json:"status" validate:"omitempty,oneof=WISHLIST WATCHED"`
	Rating         *int   `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Review         string `json:"review"`
}

func (r MovieRequest) toInput() service.MovieInput {
	return service.MovieInput{
		Title:          r.Title,
		Genre:          r.Genre,
		ReleaseYear:    r.ReleaseYear,
		RuntimeMinutes: r.RuntimeMinutes,
		PosterURL:      r.PosterURL,
		Status:         model.Status(r.Status),
		Rating:         r.Rating,
		Review:         r.Review,
	}
}

// HandleAdd creates a movie on the caller's list.
//
// HTTP: POST /api/movies
func (h *MovieHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var req MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid movie JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	movie, err := h.movies.Add(r.Context(), req.toInput(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, movie)
}

// HandleUpdate is a full-field update.
//
// HTTP: PUT /api/movies/{id}
func (h *MovieHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var req MovieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	movie, err := h.movies.Update(r.Context(), r.PathValue("id"), req.toInput(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleMarkWatched transitions a movie to WATCHED. Rating and review arrive
// as optional query parameters, mirroring the established client contract:
//
//	PUT /api/movies/{id}/mark-watched?rating=5&review=great
//
// An absent parameter means "leave the prior value untouched".
func (h *MovieHandler) HandleMarkWatched(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var rating *int
	if s := r.URL.Query().Get("rating"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "rating must be an integer"})
			return
		}
		rating = &n
	}

	var review *string
	if r.URL.Query().Has("review") {
		s := r.URL.Query().Get("review")
		review = &s
	}

	movie, err := h.movies.MarkAsWatched(r.Context(), r.PathValue("id"), rating, review, actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleDelete removes a movie.
//
// HTTP: DELETE /api/movies/{id}
func (h *MovieHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.movies.Delete(r.Context(), r.PathValue("id"), actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetByID returns one movie. Public read.
//
// HTTP: GET /api/movies/{id}
func (h *MovieHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	movie, err := h.movies.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movie)
}

// HandleWishlist returns the caller's wishlist.
//
// HTTP: GET /api/movies/wishlist
func (h *MovieHandler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	h.handleOwnList(w, r, h.movies.Wishlist)
}

// HandleWatched returns the caller's watched list.
//
// HTTP: GET /api/movies/watched
func (h *MovieHandler) HandleWatched(w http.ResponseWriter, r *http.Request) {
	h.handleOwnList(w, r, h.movies.Watched)
}

// HandleUserMovies returns another user's movies, optionally filtered:
//
//	GET /api/movies/user/{userId}?status=WATCHED
//
// Public by existing contract (see the note on MovieService.UserMovies).
func (h *MovieHandler) HandleUserMovies(w http.ResponseWriter, r *http.Request) {
	var status *model.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := model.Status(s)
		status = &st
	}

	movies, err := h.movies.UserMovies(r.Context(), r.PathValue("userId"), status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}

func (h *MovieHandler) handleOwnList(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, owner *model.User) ([]model.Movie, error)) {
	actor, err := resolveActor(r.Context(), h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	movies, err := list(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movies)
}
