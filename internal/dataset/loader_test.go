package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/reelrank/internal/catalog"
	"github.com/kailas-cloud/reelrank/internal/domain"
	"github.com/kailas-cloud/reelrank/internal/similarity"
	"github.com/kailas-cloud/reelrank/internal/vectorize"
)

func writeBlobs(t *testing.T, dir string, movies []catalog.Movie, m *similarity.Matrix) {
	t.Helper()
	blobs := DefaultBlobs()

	var cat bytes.Buffer
	if err := EncodeCatalog(&cat, movies); err != nil {
		t.Fatalf("encode catalog: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, blobs.Catalog), cat.Bytes(), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	var sim bytes.Buffer
	if err := EncodeMatrix(&sim, m); err != nil {
		t.Fatalf("encode matrix: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, blobs.Similarity), sim.Bytes(), 0o600); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	var vec bytes.Buffer
	if err := EncodeVectorizer(&vec, vectorize.Fit([]string{"Action"})); err != nil {
		t.Fatalf("encode vectorizer: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, blobs.Vectorizer), vec.Bytes(), 0o600); err != nil {
		t.Fatalf("write vectorizer: %v", err)
	}
}

func mustMatrix(t *testing.T, n int, scores []float64) *similarity.Matrix {
	t.Helper()
	m, err := similarity.NewMatrix(n, scores)
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	return m
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	movies := []catalog.Movie{
		{ID: 10, Title: "A (1990)", Genres: "Action"},
		{ID: 20, Title: "B (1991)", Genres: "Action"},
		{ID: 30, Title: "C (1992)", Genres: "Drama"},
	}
	m := mustMatrix(t, 3, []float64{
		1.0, 0.9, 0.1,
		0.9, 1.0, 0.05,
		0.1, 0.05, 1.0,
	})
	writeBlobs(t, dir, movies, m)

	snap, err := Load(dir, DefaultBlobs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Catalog.Len() != 3 {
		t.Errorf("catalog len = %d, want 3", snap.Catalog.Len())
	}
	if snap.Similarity.N() != 3 {
		t.Errorf("matrix n = %d, want 3", snap.Similarity.N())
	}
	if got := snap.Similarity.At(0, 1); got != 0.9 {
		t.Errorf("At(0,1) = %g, want 0.9", got)
	}
	if got := snap.Catalog.At(2).Genres; got != "Drama" {
		t.Errorf("genres = %q, want Drama", got)
	}
}

func TestLoad_SizeMismatchIsFatal(t *testing.T) {
	dir := t.TempDir()
	movies := []catalog.Movie{
		{ID: 1, Title: "A", Genres: "Action"},
		{ID: 2, Title: "B", Genres: "Action"},
		{ID: 3, Title: "C", Genres: "Drama"},
		{ID: 4, Title: "D", Genres: "Drama"},
		{ID: 5, Title: "E", Genres: "Drama"},
	}
	scores := make([]float64, 16)
	writeBlobs(t, dir, movies, mustMatrix(t, 4, scores))

	_, err := Load(dir, DefaultBlobs())
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
	if !errors.Is(err, domain.ErrDatasetMismatch) {
		t.Errorf("expected ErrDatasetMismatch, got %v", err)
	}
}

func TestLoad_MissingBlob(t *testing.T) {
	dir := t.TempDir()
	movies := []catalog.Movie{{ID: 1, Title: "A", Genres: "Action"}}
	writeBlobs(t, dir, movies, mustMatrix(t, 1, []float64{1}))

	if err := os.Remove(filepath.Join(dir, DefaultBlobs().Vectorizer)); err != nil {
		t.Fatalf("remove vectorizer: %v", err)
	}

	_, err := Load(dir, DefaultBlobs())
	if !errors.Is(err, domain.ErrBlobMissing) {
		t.Errorf("expected ErrBlobMissing, got %v", err)
	}
}

func TestDecodeMatrix_CorruptHeader(t *testing.T) {
	_, err := DecodeMatrix(bytes.NewReader([]byte("XXXX\x01\x00\x00\x00\x02\x00\x00\x00")))
	if err == nil {
		t.Fatal("expected bad magic error")
	}

	var good bytes.Buffer
	if err := EncodeMatrix(&good, mustMatrix(t, 2, []float64{1, 0.5, 0.5, 1})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	truncated := good.Bytes()[:good.Len()-4]
	if _, err := DecodeMatrix(bytes.NewReader(truncated)); err == nil {
		t.Fatal("expected truncation error")
	}
}
