package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/reelrank/internal/domain"
)

// Load reads and validates the data blobs from dir and returns the snapshot.
// Any failure here is a fatal configuration error: the caller must refuse to
// serve rather than fail per-request later.
func Load(dir string, blobs Blobs) (*Snapshot, error) {
	// The vectorizer is prep-time-only, but a missing blob means an
	// incomplete or corrupted data directory, so its presence is checked too.
	for _, name := range []string{blobs.Catalog, blobs.Similarity, blobs.Vectorizer} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobMissing, path)
		}
	}

	catFile, err := os.Open(filepath.Clean(filepath.Join(dir, blobs.Catalog)))
	if err != nil {
		return nil, fmt.Errorf("open catalog blob: %w", err)
	}
	defer func() { _ = catFile.Close() }()

	cat, err := DecodeCatalog(catFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	simFile, err := os.Open(filepath.Clean(filepath.Join(dir, blobs.Similarity)))
	if err != nil {
		return nil, fmt.Errorf("open similarity blob: %w", err)
	}
	defer func() { _ = simFile.Close() }()

	matrix, err := DecodeMatrix(simFile)
	if err != nil {
		return nil, fmt.Errorf("load similarity matrix: %w", err)
	}

	if cat.Len() != matrix.N() {
		return nil, fmt.Errorf("%w: catalog has %d movies, matrix is %dx%d",
			domain.ErrDatasetMismatch, cat.Len(), matrix.N(), matrix.N())
	}

	return &Snapshot{Catalog: cat, Similarity: matrix}, nil
}
