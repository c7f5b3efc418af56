// Package recommend implements content-based ranking over the precomputed
// similarity matrix: resolve the title to a row, sort the row, truncate.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/reelrank/internal/dataset"
	"github.com/kailas-cloud/reelrank/internal/domain"
)

const defaultMaxCount = 50

// Service ranks catalog movies by similarity to a given title.
// It is a pure function over the immutable snapshot; concurrent calls share
// no mutable state.
type Service struct {
	snap     *dataset.Snapshot
	enricher Enricher
	maxCount int
}

// New creates a recommendation service. enricher can be nil, in which case
// results carry no external metadata.
func New(snap *dataset.Snapshot, enricher Enricher) *Service {
	return &Service{snap: snap, enricher: enricher, maxCount: defaultMaxCount}
}

// WithMaxCount caps the number of results a single request may ask for.
func (s *Service) WithMaxCount(maxCount int) *Service {
	if maxCount > 0 {
		s.maxCount = maxCount
	}
	return s
}

// Titles returns all catalog titles sorted alphabetically.
func (s *Service) Titles() []string {
	return s.snap.Catalog.Titles()
}

// Recommend returns the count most similar movies to title, sorted by
// descending score with ties broken by ascending catalog index. The movie
// itself is always excluded. Asking for more results than the catalog has
// returns all N-1 others.
func (s *Service) Recommend(ctx context.Context, title string, count int) ([]domain.Recommendation, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidCount, count)
	}
	if count > s.maxCount {
		count = s.maxCount
	}

	idx, ok := s.snap.Catalog.IndexOf(title)
	if !ok {
		return nil, domain.NewTitleNotFound(title)
	}

	row := s.snap.Similarity.Row(idx)

	// Candidates start in ascending catalog order, so the stable sort
	// leaves equal scores ordered by index. This makes ranking
	// deterministic for equal scores.
	candidates := make([]int, 0, len(row)-1)
	for i := range row {
		if i != idx {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return row[candidates[a]] > row[candidates[b]]
	})

	if count > len(candidates) {
		count = len(candidates)
	}

	recs := make([]domain.Recommendation, count)
	for i, c := range candidates[:count] {
		movie := s.snap.Catalog.At(c)
		recs[i] = domain.Recommendation{
			MovieID: movie.ID,
			Title:   movie.Title,
			Genres:  movie.Genres,
			Score:   row[c],
		}
	}

	if s.enricher != nil {
		s.enricher.EnrichAll(ctx, recs)
	}

	return recs, nil
}
