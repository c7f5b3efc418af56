// Package tmdb is the metadata provider client for The Movie Database
// search API. Lookups are best-effort: callers treat any error as "no
// metadata" and keep serving core results.
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/reelrank/internal/domain"
	"github.com/kailas-cloud/reelrank/internal/metrics"
)

const providerName = "tmdb"

// Config holds the TMDB client settings.
type Config struct {
	BaseURL      string
	ImageBaseURL string
	APIKey       string
	Timeout      time.Duration

	// Client-side rate limit. Zero disables limiting.
	RequestsPerSec float64
	Burst          int

	// Circuit breaker: consecutive failures before the breaker opens, and
	// how long it stays open.
	BreakerFailures uint32
	BreakerReset    time.Duration

	Logger *zap.Logger
}

// Client queries the TMDB search API.
type Client struct {
	httpc        *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[*movieHit]
	logger       *zap.Logger
}

// NewClient creates a TMDB client.
func NewClient(cfg *Config) *Client {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	reset := cfg.BreakerReset
	if reset <= 0 {
		reset = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	breaker := gobreaker.NewCircuitBreaker[*movieHit](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: reset,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Metadata provider breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
	}

	return &Client{
		httpc:        &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		limiter:      limiter,
		breaker:      breaker,
		logger:       logger,
	}
}

// movieHit is the subset of a TMDB search result the enricher uses.
type movieHit struct {
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type searchResponse struct {
	Results []movieHit `json:"results"`
}

// Lookup searches TMDB for the given catalog title and returns metadata for
// the first hit, or (nil, nil) when TMDB has no match. Transport failures,
// rate-limit waits cut short by the context, and an open breaker all return
// an error wrapping domain.ErrEnrichmentUnavailable.
func (c *Client) Lookup(ctx context.Context, title string) (*domain.Metadata, error) {
	query := CleanTitle(title)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %s: %w", err, domain.ErrEnrichmentUnavailable)
		}
	}

	hit, err := c.breaker.Execute(func() (*movieHit, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		metrics.EnrichmentRequestsTotal.WithLabelValues(providerName, "error").Inc()
		return nil, fmt.Errorf("tmdb search: %s: %w", err, domain.ErrEnrichmentUnavailable)
	}

	metrics.EnrichmentRequestsTotal.WithLabelValues(providerName, "success").Inc()

	if hit == nil {
		c.logger.Debug("No TMDB results", zap.String("title", title), zap.String("query", query))
		return nil, nil
	}

	posterURL := PlaceholderPosterURL(title)
	if hit.PosterPath != "" {
		posterURL = c.imageBaseURL + hit.PosterPath
	}

	return &domain.Metadata{
		PosterURL:   posterURL,
		Overview:    hit.Overview,
		ReleaseDate: hit.ReleaseDate,
		Rating:      hit.VoteAverage,
	}, nil
}

// search performs one GET /search/movie call. An empty result set returns
// (nil, nil) so it does not count as a breaker failure.
func (c *Client) search(ctx context.Context, query string) (*movieHit, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("include_adult", "false")

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/search/movie?"+params.Encode(), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.EnrichmentRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(sr.Results) == 0 {
		return nil, nil
	}
	return &sr.Results[0], nil
}

// HealthCheck verifies API availability via the configuration endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/configuration?api_key="+url.QueryEscape(c.apiKey), nil,
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb configuration: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb configuration: status %d", resp.StatusCode)
	}
	return nil
}

var (
	yearSuffixRe = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	theSuffixRe  = regexp.MustCompile(`,\s*The\s*$`)
)

// CleanTitle converts a catalog title into a TMDB search query:
// "Batman/Superman Movie, The (1998)" -> "Batman Superman Movie".
func CleanTitle(title string) string {
	t := yearSuffixRe.ReplaceAllString(title, "")
	t = theSuffixRe.ReplaceAllString(t, "")
	t = strings.ReplaceAll(t, "/", " ")
	t = strings.ReplaceAll(t, ",", "")
	return strings.Join(strings.Fields(t), " ")
}

// PlaceholderPosterURL returns a generated placeholder image URL for titles
// TMDB has no poster for.
func PlaceholderPosterURL(title string) string {
	return "https://via.placeholder.com/342x513/1e3c72/ffffff?text=" +
		strings.ReplaceAll(title, " ", "+")
}
