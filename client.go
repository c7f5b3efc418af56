// Package reelrank provides a small HTTP client for the reelrank
// recommendation API.
package reelrank

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

// Sentinel errors for API failures. Use errors.Is() to check.
var (
	ErrTitleNotFound = domain.ErrTitleNotFound
	ErrInvalidCount  = domain.ErrInvalidCount
)

const defaultTimeout = 30 * time.Second

// Client is the reelrank API client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the API at baseURL (for example
// "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("reelrank: base URL required")
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.apiKey,
		http:    httpClient,
	}, nil
}

// MovieList is the catalog listing returned by Movies.
type MovieList struct {
	Movies []string `json:"movies"`
	Count  int      `json:"count"`
}

// Metadata holds the optional external metadata attached to a
// recommendation. Fields are nil when enrichment was unavailable.
type Metadata struct {
	PosterURL   *string  `json:"poster_url"`
	Overview    *string  `json:"overview"`
	ReleaseDate *string  `json:"release_date"`
	Rating      *float64 `json:"rating"`
}

// Recommendation is a single ranked result.
type Recommendation struct {
	Title         string  `json:"title"`
	Similarity    float64 `json:"similarity"`
	SimilarityPct float64 `json:"similarity_pct"`
	Genres        string  `json:"genres"`
	MovieID       int64   `json:"movie_id"`
	Metadata
}

// RecommendResult is the full response of a recommendation request.
type RecommendResult struct {
	Movie           string           `json:"movie"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Movies lists every movie title the service can recommend for, sorted
// alphabetically.
func (c *Client) Movies(ctx context.Context) (*MovieList, error) {
	var list MovieList
	if err := c.do(ctx, http.MethodGet, "/api/movies", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Recommend returns up to count movies similar to title. count <= 0 asks
// for the server default.
func (c *Client) Recommend(ctx context.Context, title string, count int) (*RecommendResult, error) {
	req := map[string]any{"movie_title": title}
	if count > 0 {
		req["num_recommendations"] = count
	}

	var result RecommendResult
	if err := c.do(ctx, http.MethodPost, "/api/recommend", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health reports the service health status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("reelrank: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("reelrank: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reelrank: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("reelrank: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reelrank: api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes to sentinel errors so callers can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrTitleNotFound
	case http.StatusBadRequest:
		return ErrInvalidCount
	default:
		return nil
	}
}
