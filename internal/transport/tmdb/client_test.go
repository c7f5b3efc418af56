package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Toy Story (1995)", "Toy Story"},
		{"Batman/Superman Movie, The (1998)", "Batman Superman Movie"},
		{"Shawshank Redemption, The (1994)", "Shawshank Redemption"},
		{"Heat", "Heat"},
		{"Movie  With   Spaces (2001)", "Movie With Spaces"},
		{"Hello, Dolly! (1969)", "Hello Dolly!"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanTitle(tt.in); got != tt.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(&Config{
		BaseURL:      baseURL,
		ImageBaseURL: "https://image.example/t/p/w342",
		APIKey:       "test-key",
		Timeout:      2 * time.Second,
	})
}

func TestLookup_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key param")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"poster_path":"/heat.jpg","overview":"crime saga","release_date":"1995-12-15","vote_average":7.9}]}`))
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "Heat (1995)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "Heat" {
		t.Errorf("query = %q, want cleaned title", gotQuery)
	}
	if meta == nil {
		t.Fatal("expected metadata")
	}
	if meta.PosterURL != "https://image.example/t/p/w342/heat.jpg" {
		t.Errorf("poster url = %q", meta.PosterURL)
	}
	if meta.Rating != 7.9 || meta.ReleaseDate != "1995-12-15" || meta.Overview != "crime saga" {
		t.Errorf("metadata mismatch: %+v", meta)
	}
}

func TestLookup_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "Nonexistent (1900)")
	if err != nil {
		t.Fatalf("no results must not be an error: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil metadata, got %+v", meta)
	}
}

func TestLookup_MissingPosterUsesPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"overview":"obscure","vote_average":5.0}]}`))
	}))
	defer srv.Close()

	meta, err := newTestClient(srv.URL).Lookup(context.Background(), "Obscure Film (1950)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "https://via.placeholder.com/342x513/1e3c72/ffffff?text=Obscure+Film+(1950)"
	if meta.PosterURL != want {
		t.Errorf("poster url = %q, want %q", meta.PosterURL, want)
	}
}

func TestLookup_ServerErrorWrapsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "Heat (1995)")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrEnrichmentUnavailable) {
		t.Errorf("expected ErrEnrichmentUnavailable, got %v", err)
	}
}

func TestLookup_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(&Config{
		BaseURL:         srv.URL,
		ImageBaseURL:    "https://image.example",
		APIKey:          "k",
		Timeout:         time.Second,
		BreakerFailures: 2,
		BreakerReset:    time.Minute,
	})

	for i := 0; i < 4; i++ {
		if _, err := c.Lookup(context.Background(), "Heat (1995)"); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	// After two consecutive failures the breaker is open and stops
	// forwarding requests to the server.
	if got := hits.Load(); got != 2 {
		t.Errorf("expected 2 upstream hits before breaker opened, got %d", got)
	}
}
