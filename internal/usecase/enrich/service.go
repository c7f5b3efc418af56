// Package enrich attaches best-effort external metadata to ranked results.
// Provider failures degrade to "no metadata"; they never remove a result or
// propagate an error to the caller.
package enrich

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/reelrank/internal/domain"
	"github.com/kailas-cloud/reelrank/internal/logger"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultConcurrency = 8
)

// Service enriches recommendations concurrently with a bounded fan-out and
// a per-lookup timeout.
type Service struct {
	provider    Provider
	timeout     time.Duration
	concurrency int
}

// New creates an enrichment service. provider can be nil, which disables
// enrichment entirely.
func New(provider Provider) *Service {
	return &Service{
		provider:    provider,
		timeout:     defaultTimeout,
		concurrency: defaultConcurrency,
	}
}

// WithTimeout sets the per-lookup timeout.
func (s *Service) WithTimeout(timeout time.Duration) *Service {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// WithConcurrency bounds the number of in-flight provider lookups.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// EnrichAll fills rec.Metadata in place for every result it can. Each
// lookup writes only its own slice element, so no locking is needed.
func (s *Service) EnrichAll(ctx context.Context, recs []domain.Recommendation) {
	if s.provider == nil || len(recs) == 0 {
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range recs {
		g.Go(func() error {
			recs[i].Metadata = s.lookup(ctx, recs[i].Title)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()
}

// lookup runs one bounded provider call, degrading to nil on any failure.
func (s *Service) lookup(ctx context.Context, title string) *domain.Metadata {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meta, err := s.provider.Lookup(ctx, title)
	if err != nil {
		log := logger.FromContext(ctx)
		if errors.Is(err, domain.ErrEnrichmentUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			log.Debug("Metadata lookup degraded", zap.String("title", title), zap.Error(err))
		} else {
			log.Warn("Metadata lookup failed", zap.String("title", title), zap.Error(err))
		}
		return nil
	}
	return meta
}
