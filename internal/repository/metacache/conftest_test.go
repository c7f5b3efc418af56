package metacache

import (
	"context"
	"time"

	"github.com/kailas-cloud/reelrank/internal/db"
	"github.com/kailas-cloud/reelrank/internal/domain"
)

// mockStore implements the consumer store interface for tests.
type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

// mockProvider implements Provider for tests.
type mockProvider struct {
	meta  *domain.Metadata
	err   error
	calls int
}

func (m *mockProvider) Lookup(_ context.Context, _ string) (*domain.Metadata, error) {
	m.calls++
	return m.meta, m.err
}
