package enrich

import (
	"context"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

// Provider looks up external metadata for a title. (nil, nil) means the
// provider has no match; errors mean the provider is unreachable.
type Provider interface {
	Lookup(ctx context.Context, title string) (*domain.Metadata, error)
}
