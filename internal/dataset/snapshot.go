// Package dataset loads the precomputed data blobs and publishes them as an
// immutable snapshot. The three blobs (catalog, similarity matrix, fitted
// vectorizer) are produced offline by reelrank-prepare; serving only reads
// the first two, but all three must be present before the process starts.
package dataset

import (
	"github.com/kailas-cloud/reelrank/internal/catalog"
	"github.com/kailas-cloud/reelrank/internal/similarity"
)

// Snapshot is the process-wide read-only state shared by all requests.
// It is fully validated before being handed to the serving layer and never
// mutated afterwards, so concurrent reads need no locking.
type Snapshot struct {
	Catalog    *catalog.Catalog
	Similarity *similarity.Matrix
}

// Blobs names the three data files inside the data directory.
type Blobs struct {
	Catalog    string
	Similarity string
	Vectorizer string
}

// DefaultBlobs returns the standard blob file names.
func DefaultBlobs() Blobs {
	return Blobs{
		Catalog:    "catalog.json",
		Similarity: "similarity.bin",
		Vectorizer: "vectorizer.json",
	}
}
