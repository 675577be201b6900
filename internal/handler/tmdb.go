package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/tmdb"
)

// TmdbHandler proxies the external metadata provider for search/discovery.
// All endpoints are public — nothing here touches user state. Adding a found
// movie to a list goes through the normal POST /api/movies flow with the
// mapped fields.
//
//	GET /api/tmdb/search?query=...&page=N
//	GET /api/tmdb/movie/{id}
//	GET /api/tmdb/movie/{id}/recommendations
//	GET /api/tmdb/popular
//	GET /api/tmdb/top-rated
//	GET /api/tmdb/upcoming
type TmdbHandler struct {
	client *tmdb.Client
	logger *slog.Logger
}

// NewTmdbHandler creates a TmdbHandler.
func NewTmdbHandler(client *tmdb.Client, logger *slog.Logger) *TmdbHandler {
	return &TmdbHandler{client: client, logger: logger}
}

// HandleSearch searches the provider by title.
func (h *TmdbHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.Search(r.Context(), r.URL.Query().Get("query"), pageOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleDetails returns one provider record by its external id.
func (h *TmdbHandler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "movie id must be an integer"))
		return
	}

	movie, err := h.client.Details(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

// HandleRecommendations returns the provider's recommendations for a movie.
func (h *TmdbHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "movie id must be an integer"))
		return
	}

	page, err := h.client.Recommendations(r.Context(), id, pageOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandlePopular returns the provider's popular listing.
func (h *TmdbHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.Popular(r.Context(), pageOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleTopRated returns the provider's top-rated listing.
func (h *TmdbHandler) HandleTopRated(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.TopRated(r.Context(), pageOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleUpcoming returns the provider's upcoming listing.
func (h *TmdbHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	page, err := h.client.Upcoming(r.Context(), pageOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func pageOf(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
