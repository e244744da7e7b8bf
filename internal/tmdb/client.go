// Package tmdb is a thin client for The Movie Database v3 API, covering the
// two calls topten needs: title search and fetch-by-id.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/roach88/topten/internal/movie"
)

const (
	// DefaultBaseURL is used when no API base is configured.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// DefaultPosterBase is prefixed to poster paths to build image URLs.
	DefaultPosterBase = "https://image.tmdb.org/t/p/w500"
)

// maxErrorBody caps how much of a failed response is read for the message.
const maxErrorBody = 4096

// Config holds the client's connection settings.
type Config struct {
	Token   string
	BaseURL string

	// RequestsPerSecond limits outbound calls; zero or negative disables
	// limiting.
	RequestsPerSecond float64
	Burst             int
}

// Client calls the TMDB API with a bearer token.
// Safe for concurrent use.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client. A missing token is not an error here; the API
// rejects the first request instead.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		token:   cfg.Token,
		baseURL: base,
		http:    http.DefaultClient,
		limiter: rate.NewLimiter(limit, burst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Page    int               `json:"page"`
	Results []movie.Candidate `json:"results"`
}

// SearchMovies queries TMDB for movies matching title.
// Returns an empty slice (not nil) when nothing matches.
func (c *Client) SearchMovies(ctx context.Context, title string) ([]movie.Candidate, error) {
	q := url.Values{}
	q.Set("query", norm.NFC.String(title))
	u := c.baseURL + "/search/movie?" + q.Encode()

	var resp searchResponse
	if err := c.get(ctx, "search", u, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		resp.Results = []movie.Candidate{}
	}
	return resp.Results, nil
}

// FetchMovie returns the details of one movie by its TMDB id.
func (c *Client) FetchMovie(ctx context.Context, id int64) (movie.Candidate, error) {
	u := fmt.Sprintf("%s/movie/%d", c.baseURL, id)

	var cand movie.Candidate
	if err := c.get(ctx, "fetch", u, &cand); err != nil {
		return movie.Candidate{}, err
	}
	return cand, nil
}

func (c *Client) get(ctx context.Context, op, u string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb %s: rate limit: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "tmdb request",
		"op", op,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(op, u, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// apiError is the error body TMDB returns alongside non-2xx statuses.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func newStatusError(op, u string, resp *http.Response) *UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	msg := strings.TrimSpace(string(body))
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
		msg = apiErr.StatusMessage
	}
	return &UpstreamError{Op: op, URL: u, StatusCode: resp.StatusCode, Message: msg}
}
