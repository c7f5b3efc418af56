// Package chi is the HTTP transport for the recommendation API. Handlers
// are pure orchestration: decode, call the use case, encode.
package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/reelrank/internal/domain"
	healthuc "github.com/kailas-cloud/reelrank/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/reelrank/internal/usecase/recommend"
)

const defaultRecommendCount = 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the list and recommend operations.
type Server struct {
	recommender   *recommenduc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	defaultCount  int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(recommender *recommenduc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		recommender:  recommender,
		health:       health,
		logger:       logger,
		defaultCount: defaultRecommendCount,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTitleNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrInvalidCount, http.StatusBadRequest),
	}
	return s
}

// WithDefaultCount overrides the count used when a request omits it.
func (s *Server) WithDefaultCount(n int) *Server {
	if n > 0 {
		s.defaultCount = n
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/movies", s.listMovies)
	r.Post("/api/recommend", s.recommend)
	r.Get("/health", s.healthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type movieListResponse struct {
	Movies []string `json:"movies"`
	Count  int      `json:"count"`
}

type recommendRequest struct {
	MovieTitle         string `json:"movie_title"`
	NumRecommendations *int   `json:"num_recommendations"`
}

type recommendationJSON struct {
	Title         string   `json:"title"`
	Similarity    float64  `json:"similarity"`
	SimilarityPct float64  `json:"similarity_pct"`
	Genres        string   `json:"genres"`
	MovieID       int64    `json:"movie_id"`
	PosterURL     *string  `json:"poster_url"`
	Overview      *string  `json:"overview"`
	ReleaseDate   *string  `json:"release_date"`
	Rating        *float64 `json:"rating"`
}

type recommendResponse struct {
	Success         bool                 `json:"success"`
	Movie           string               `json:"movie"`
	Recommendations []recommendationJSON `json:"recommendations"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// listMovies handles GET /api/movies.
func (s *Server) listMovies(w http.ResponseWriter, _ *http.Request) {
	titles := s.recommender.Titles()
	writeJSON(w, http.StatusOK, movieListResponse{Movies: titles, Count: len(titles)})
}

// recommend handles POST /api/recommend.
func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.MovieTitle == "" {
		writeError(w, http.StatusBadRequest, "movie_title is required")
		return
	}

	count := s.defaultCount
	if req.NumRecommendations != nil {
		count = *req.NumRecommendations
	}

	recs, err := s.recommender.Recommend(r.Context(), req.MovieTitle, count)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]recommendationJSON, len(recs))
	for i, rec := range recs {
		items[i] = recommendationToJSON(rec)
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Success:         true,
		Movie:           req.MovieTitle,
		Recommendations: items,
	})
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check(r.Context()))
}

func recommendationToJSON(rec domain.Recommendation) recommendationJSON {
	item := recommendationJSON{
		Title:         rec.Title,
		Similarity:    rec.Score,
		SimilarityPct: rec.ScorePercent(),
		Genres:        rec.Genres,
		MovieID:       rec.MovieID,
	}
	if meta := rec.Metadata; meta != nil {
		item.PosterURL = &meta.PosterURL
		item.Overview = &meta.Overview
		item.ReleaseDate = &meta.ReleaseDate
		item.Rating = &meta.Rating
	}
	return item
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// sentinelHandler maps a sentinel error to an HTTP status, echoing the
// error text (which carries the offending title for not-found).
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if errors.Is(err, sentinel) {
			writeError(w, status, err.Error())
			return true
		}
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
