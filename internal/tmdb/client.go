// Package tmdb is the adapter for The Movie Database, the external metadata
// provider. It proxies search/discovery calls and maps provider records into
// the domain's movie shape.
//
// The core services never call this package — the adapter hands
// already-mapped data to the handlers, which feed it into MovieService as
// ordinary input. Fetch and construct are two separate steps; no lock is ever
// held across a provider call.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/service"
)

// posterBaseURL is prepended to the provider's relative poster paths.
const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Client calls the TMDB HTTP API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a TMDB client. baseURL is configurable so tests can
// point it at a local fake server.
func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// MovieResult is the typed, all-fields-optional record the provider returns.
// Pointers distinguish "absent in the response" from zero values, so the
// mapping below can apply explicit fallbacks field by field instead of
// poking at an untyped map.
type MovieResult struct {
	ID          *int64   `json:"id"`
	Title       *string  `json:"title"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"` // "YYYY-MM-DD"
	Runtime     *int     `json:"runtime"`
	PosterPath  *string  `json:"poster_path"`
	VoteAverage *float64 `json:"vote_average"`
	Genres      []Genre  `json:"genres"`
}

// Genre is a provider genre entry.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Page is one page of provider results.
type Page struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// Search queries the provider by title.
func (c *Client) Search(ctx context.Context, query string, page int) (*Page, error) {
	if query == "" {
		return nil, apperror.ValidationFailed("query", "search query is required")
	}
	var p Page
	if err := c.get(ctx, "/search/movie", url.Values{"query": {query}, "page": {pageParam(page)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Popular returns the provider's popular-movies listing.
func (c *Client) Popular(ctx context.Context, page int) (*Page, error) {
	var p Page
	if err := c.get(ctx, "/movie/popular", url.Values{"page": {pageParam(page)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TopRated returns the provider's top-rated listing.
func (c *Client) TopRated(ctx context.Context, page int) (*Page, error) {
	var p Page
	if err := c.get(ctx, "/movie/top_rated", url.Values{"page": {pageParam(page)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upcoming returns the provider's upcoming listing.
func (c *Client) Upcoming(ctx context.Context, page int) (*Page, error) {
	var p Page
	if err := c.get(ctx, "/movie/upcoming", url.Values{"page": {pageParam(page)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Details fetches a single movie record, including runtime and full genres
// (which the listing endpoints omit).
func (c *Client) Details(ctx context.Context, movieID int64) (*MovieResult, error) {
	var m MovieResult
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), url.Values{}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Recommendations returns the provider's recommendations for a movie.
func (c *Client) Recommendations(ctx context.Context, movieID int64, page int) (*Page, error) {
	var p Page
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID),
		url.Values{"page": {pageParam(page)}}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MapToMovieInput converts a provider record to MovieService input with
// explicit fallbacks: missing title → empty (rejected downstream by the
// service's required-field check), release year parsed from the date prefix,
// first genre name only, poster path prefixed with the image base URL.
func MapToMovieInput(m *MovieResult) service.MovieInput {
	var in service.MovieInput

	if m.Title != nil {
		in.Title = *m.Title
	}
	if len(m.Genres) > 0 {
		in.Genre = m.Genres[0].Name
	}
	if m.ReleaseDate != nil && len(*m.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi((*m.ReleaseDate)[:4]); err == nil {
			in.ReleaseYear = year
		}
	}
	if m.Runtime != nil {
		in.RuntimeMinutes = *m.Runtime
	}
	if m.PosterPath != nil && *m.PosterPath != "" {
		in.PosterURL = posterBaseURL + *m.PosterPath
	}

	return in
}

// get performs one provider call and decodes the JSON body into out.
// Provider failures are mapped to the domain's Internal error — callers see
// a generic failure, the log line keeps the detail.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("tmdb: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("TMDB request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperror.Internal(fmt.Errorf("tmdb: calling %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperror.NotFound("movie", path)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("TMDB returned non-OK status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return apperror.Internal(fmt.Errorf("tmdb: %s returned status %d", path, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Internal(fmt.Errorf("tmdb: decoding %s response: %w", path, err))
	}

	return nil
}

func pageParam(page int) string {
	if page < 1 {
		page = 1
	}
	return strconv.Itoa(page)
}
