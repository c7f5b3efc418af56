package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

// mockProvider implements Provider for tests.
type mockProvider struct {
	mu       sync.Mutex
	byTitle  map[string]*domain.Metadata
	errFor   map[string]error
	delay    time.Duration
	inflight int
	peak     int
}

func (m *mockProvider) Lookup(ctx context.Context, title string) (*domain.Metadata, error) {
	m.mu.Lock()
	m.inflight++
	if m.inflight > m.peak {
		m.peak = m.inflight
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inflight--
		m.mu.Unlock()
	}()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := m.errFor[title]; ok {
		return nil, err
	}
	return m.byTitle[title], nil
}

func recsFor(titles ...string) []domain.Recommendation {
	recs := make([]domain.Recommendation, len(titles))
	for i, t := range titles {
		recs[i] = domain.Recommendation{Title: t, Score: 0.5}
	}
	return recs
}

func TestEnrichAll_FillsMetadataInPlace(t *testing.T) {
	p := &mockProvider{byTitle: map[string]*domain.Metadata{
		"A": {Rating: 7.0},
		"B": {Rating: 8.0},
	}}
	svc := New(p)

	recs := recsFor("A", "B", "C")
	svc.EnrichAll(context.Background(), recs)

	if recs[0].Metadata == nil || recs[0].Metadata.Rating != 7.0 {
		t.Errorf("recs[0] metadata = %+v", recs[0].Metadata)
	}
	if recs[1].Metadata == nil || recs[1].Metadata.Rating != 8.0 {
		t.Errorf("recs[1] metadata = %+v", recs[1].Metadata)
	}
	if recs[2].Metadata != nil {
		t.Errorf("no-match title must stay nil, got %+v", recs[2].Metadata)
	}
}

func TestEnrichAll_ProviderErrorKeepsResult(t *testing.T) {
	p := &mockProvider{
		byTitle: map[string]*domain.Metadata{"A": {Rating: 7.0}},
		errFor:  map[string]error{"B": errors.New("boom")},
	}
	svc := New(p)

	recs := recsFor("A", "B")
	svc.EnrichAll(context.Background(), recs)

	if recs[0].Metadata == nil {
		t.Error("healthy lookup must still succeed")
	}
	if recs[1].Metadata != nil {
		t.Error("failed lookup must degrade to nil metadata")
	}
	// Both results remain in the slice regardless of enrichment outcome.
	if recs[0].Title != "A" || recs[1].Title != "B" {
		t.Error("enrichment must never drop results")
	}
}

func TestEnrichAll_TimeoutDegrades(t *testing.T) {
	p := &mockProvider{
		byTitle: map[string]*domain.Metadata{"A": {Rating: 7.0}},
		delay:   200 * time.Millisecond,
	}
	svc := New(p).WithTimeout(10 * time.Millisecond)

	recs := recsFor("A")
	start := time.Now()
	svc.EnrichAll(context.Background(), recs)

	if recs[0].Metadata != nil {
		t.Error("timed-out lookup must degrade to nil metadata")
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestEnrichAll_ConcurrencyBound(t *testing.T) {
	p := &mockProvider{
		byTitle: map[string]*domain.Metadata{},
		delay:   20 * time.Millisecond,
	}
	svc := New(p).WithConcurrency(2)

	svc.EnrichAll(context.Background(), recsFor("A", "B", "C", "D", "E", "F"))

	if p.peak > 2 {
		t.Errorf("peak concurrency %d exceeds limit 2", p.peak)
	}
}

func TestEnrichAll_NilProviderIsNoop(t *testing.T) {
	svc := New(nil)
	recs := recsFor("A")
	svc.EnrichAll(context.Background(), recs)
	if recs[0].Metadata != nil {
		t.Error("nil provider must leave metadata nil")
	}
}
