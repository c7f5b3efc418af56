package recommend

import (
	"context"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

// Enricher attaches external metadata to ranked results in place.
// Enrichment is best-effort and must never fail the ranking.
type Enricher interface {
	EnrichAll(ctx context.Context, recs []domain.Recommendation)
}
