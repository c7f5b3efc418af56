package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/reelrank/internal/catalog"
	"github.com/kailas-cloud/reelrank/internal/similarity"
	"github.com/kailas-cloud/reelrank/internal/vectorize"
)

// Similarity blob layout, little-endian:
//
//	magic "RRSM" | uint32 version | uint32 n | n*n float64 row-major scores
const (
	matrixMagic   = "RRSM"
	matrixVersion = 1

	// maxMatrixDim guards against corrupt headers allocating absurd buffers.
	maxMatrixDim = 1 << 20
)

// EncodeCatalog writes the catalog blob (a JSON array of movies).
func EncodeCatalog(w io.Writer, movies []catalog.Movie) error {
	if err := json.NewEncoder(w).Encode(movies); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// DecodeCatalog reads the catalog blob and builds the catalog with its
// title index.
func DecodeCatalog(r io.Reader) (*catalog.Catalog, error) {
	var movies []catalog.Movie
	if err := json.NewDecoder(r).Decode(&movies); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c, err := catalog.New(movies)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	return c, nil
}

// EncodeMatrix writes the similarity blob.
func EncodeMatrix(w io.Writer, m *similarity.Matrix) error {
	header := make([]byte, 12)
	copy(header, matrixMagic)
	binary.LittleEndian.PutUint32(header[4:], matrixVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(m.N()))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write matrix header: %w", err)
	}

	buf := make([]byte, 8)
	for i := 0; i < m.N(); i++ {
		for _, s := range m.Row(i) {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(s))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("write matrix row %d: %w", i, err)
			}
		}
	}
	return nil
}

// DecodeMatrix reads the similarity blob.
func DecodeMatrix(r io.Reader) (*similarity.Matrix, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read matrix header: %w", err)
	}
	if string(header[:4]) != matrixMagic {
		return nil, fmt.Errorf("bad matrix magic %q", header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != matrixVersion {
		return nil, fmt.Errorf("unsupported matrix version %d", v)
	}
	n := binary.LittleEndian.Uint32(header[8:])
	if n > maxMatrixDim {
		return nil, fmt.Errorf("matrix dimension %d exceeds limit", n)
	}

	data := make([]byte, int(n)*int(n)*8)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read matrix scores: %w", err)
	}
	scores := make([]float64, int(n)*int(n))
	for i := range scores {
		scores[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}

	m, err := similarity.NewMatrix(int(n), scores)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}
	return m, nil
}

// EncodeVectorizer writes the fitted vectorizer blob. It is persisted for
// reproducibility of the offline preparation step only.
func EncodeVectorizer(w io.Writer, v *vectorize.Vectorizer) error {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode vectorizer: %w", err)
	}
	return nil
}
