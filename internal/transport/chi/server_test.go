package chi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reelrank/internal/catalog"
	"github.com/kailas-cloud/reelrank/internal/dataset"
	"github.com/kailas-cloud/reelrank/internal/domain"
	"github.com/kailas-cloud/reelrank/internal/similarity"
	healthuc "github.com/kailas-cloud/reelrank/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/reelrank/internal/usecase/recommend"
)

// staticEnricher implements recommend.Enricher for tests.
type staticEnricher struct {
	meta map[string]*domain.Metadata
}

func (e *staticEnricher) EnrichAll(_ context.Context, recs []domain.Recommendation) {
	for i := range recs {
		recs[i].Metadata = e.meta[recs[i].Title]
	}
}

func testRouter(t *testing.T, enricher recommenduc.Enricher) http.Handler {
	t.Helper()

	cat, err := catalog.New([]catalog.Movie{
		{ID: 1, Title: "A (1990)", Genres: "Action"},
		{ID: 2, Title: "B (1991)", Genres: "Action"},
		{ID: 3, Title: "C (1992)", Genres: "Drama"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	matrix, err := similarity.NewMatrix(3, []float64{
		1.0, 0.9, 0.1,
		0.9, 1.0, 0.05,
		0.1, 0.05, 1.0,
	})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}

	snap := &dataset.Snapshot{Catalog: cat, Similarity: matrix}
	svc := recommenduc.New(snap, enricher)
	server := NewServer(svc, healthuc.New(nil, nil), zap.NewNop())

	r := chirouter.NewRouter()
	server.Routes(r)
	return r
}

func postRecommend(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/recommend", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestListMovies(t *testing.T) {
	h := testRouter(t, nil)

	req := httptest.NewRequest("GET", "/api/movies", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp movieListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 3 || len(resp.Movies) != 3 {
		t.Errorf("count = %d, movies = %d, want 3", resp.Count, len(resp.Movies))
	}
	if resp.Movies[0] != "A (1990)" {
		t.Errorf("movies[0] = %q, want sorted order", resp.Movies[0])
	}
}

func TestRecommend_Success(t *testing.T) {
	h := testRouter(t, nil)

	rr := postRecommend(t, h, `{"movie_title":"A (1990)","num_recommendations":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Movie != "A (1990)" {
		t.Errorf("movie = %q, want resolved input title", resp.Movie)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(resp.Recommendations))
	}

	first := resp.Recommendations[0]
	if first.Title != "B (1991)" || first.Similarity != 0.9 {
		t.Errorf("first = %q/%g, want B (1991)/0.9", first.Title, first.Similarity)
	}
	if first.SimilarityPct != 90.0 {
		t.Errorf("similarity_pct = %g, want 90.0", first.SimilarityPct)
	}
	if first.MovieID != 2 || first.Genres != "Action" {
		t.Errorf("core fields missing: %+v", first)
	}
	if first.PosterURL != nil {
		t.Error("no enricher configured, poster_url must be null")
	}
}

func TestRecommend_DefaultCount(t *testing.T) {
	h := testRouter(t, nil)

	// Only two other movies exist, so even the default of 10 returns both.
	rr := postRecommend(t, h, `{"movie_title":"A (1990)"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("expected all 2 results with default count, got %d", len(resp.Recommendations))
	}
}

func TestRecommend_WithEnrichment(t *testing.T) {
	enr := &staticEnricher{meta: map[string]*domain.Metadata{
		"B (1991)": {
			PosterURL:   "https://image.example/b.jpg",
			Overview:    "sequel",
			ReleaseDate: "1991-06-01",
			Rating:      7.2,
		},
	}}
	h := testRouter(t, enr)

	rr := postRecommend(t, h, `{"movie_title":"A (1990)","num_recommendations":2}`)

	var resp recommendResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	enriched := resp.Recommendations[0]
	if enriched.PosterURL == nil || *enriched.PosterURL != "https://image.example/b.jpg" {
		t.Errorf("poster_url = %v", enriched.PosterURL)
	}
	if enriched.Rating == nil || *enriched.Rating != 7.2 {
		t.Errorf("rating = %v", enriched.Rating)
	}

	// The un-enriched result is still present with null metadata.
	bare := resp.Recommendations[1]
	if bare.Title != "C (1992)" {
		t.Fatalf("expected C (1992) second, got %q", bare.Title)
	}
	if bare.PosterURL != nil || bare.Overview != nil {
		t.Error("missing metadata must be null, not dropped")
	}
}

func TestRecommend_UnknownTitle(t *testing.T) {
	h := testRouter(t, nil)

	rr := postRecommend(t, h, `{"movie_title":"Unknown (2000)","num_recommendations":5}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != `movie "Unknown (2000)" not found` {
		t.Errorf("error = %q, must echo the offending title", resp.Error)
	}
}

func TestRecommend_InvalidCount(t *testing.T) {
	h := testRouter(t, nil)

	rr := postRecommend(t, h, `{"movie_title":"A (1990)","num_recommendations":0}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRecommend_BadBody(t *testing.T) {
	h := testRouter(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"movie_title":`},
		{"missing title", `{"num_recommendations":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postRecommend(t, h, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := testRouter(t, nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var report healthuc.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != healthuc.Healthy {
		t.Errorf("status = %s, want ok", report.Status)
	}
}
