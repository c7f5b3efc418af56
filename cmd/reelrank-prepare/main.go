// Command reelrank-prepare builds the serving data blobs from a MovieLens
// style dataset: it fits a genre/tag count vectorizer, computes the dense
// pairwise cosine similarity matrix and writes the catalog, similarity and
// vectorizer blobs into the output directory.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reelrank/internal/catalog"
	"github.com/kailas-cloud/reelrank/internal/dataset"
	"github.com/kailas-cloud/reelrank/internal/similarity"
	"github.com/kailas-cloud/reelrank/internal/vectorize"
)

func main() {
	var (
		moviesPath = flag.String("movies", "movies.csv", "path to the movies CSV (movieId,title,genres)")
		tagsPath   = flag.String("tags", "", "optional path to the tags CSV (userId,movieId,tag,timestamp)")
		outDir     = flag.String("out", "data", "output directory for the data blobs")
		limit      = flag.Int("limit", 0, "keep only the first N movies (0 = all)")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	start := time.Now()

	movies, err := readMovies(*moviesPath, *limit)
	if err != nil {
		logger.Fatal("Failed to read movies", zap.String("path", *moviesPath), zap.Error(err))
	}
	logger.Info("Read movies", zap.String("path", *moviesPath), zap.Int("count", len(movies)))

	tags := map[int64][]string{}
	if *tagsPath != "" {
		tags, err = readTags(*tagsPath)
		if err != nil {
			logger.Fatal("Failed to read tags", zap.String("path", *tagsPath), zap.Error(err))
		}
		logger.Info("Read tags", zap.String("path", *tagsPath), zap.Int("movies_tagged", len(tags)))
	}

	// One document per movie: genres plus any user tags.
	docs := make([]string, len(movies))
	for i, m := range movies {
		parts := []string{strings.ReplaceAll(m.Genres, "|", " ")}
		parts = append(parts, tags[m.ID]...)
		docs[i] = strings.Join(parts, " ")
	}

	vec := vectorize.Fit(docs)
	logger.Info("Fitted vectorizer", zap.Int("vocabulary", len(vec.Vocabulary)))

	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		vectors[i] = vec.Transform(doc)
	}

	scores := vectorize.SimilarityScores(vectors)
	matrix, err := similarity.NewMatrix(len(movies), scores)
	if err != nil {
		logger.Fatal("Failed to build similarity matrix", zap.Error(err))
	}
	logger.Info("Computed similarity matrix",
		zap.Int("dim", matrix.N()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	blobs := dataset.DefaultBlobs()
	if err := writeBlob(*outDir, blobs.Catalog, func(w io.Writer) error {
		return dataset.EncodeCatalog(w, movies)
	}); err != nil {
		logger.Fatal("Failed to write catalog blob", zap.Error(err))
	}
	if err := writeBlob(*outDir, blobs.Similarity, func(w io.Writer) error {
		return dataset.EncodeMatrix(w, matrix)
	}); err != nil {
		logger.Fatal("Failed to write similarity blob", zap.Error(err))
	}
	if err := writeBlob(*outDir, blobs.Vectorizer, func(w io.Writer) error {
		return dataset.EncodeVectorizer(w, vec)
	}); err != nil {
		logger.Fatal("Failed to write vectorizer blob", zap.Error(err))
	}

	logger.Info("Wrote data blobs",
		zap.String("dir", *outDir),
		zap.Int("movies", len(movies)),
		zap.Duration("total", time.Since(start)),
	)
}

// readMovies parses a MovieLens movies CSV, dropping rows whose title would
// collide with an earlier one (the catalog requires unique titles).
func readMovies(path string, limit int) ([]catalog.Movie, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3

	// Header row
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var movies []catalog.Movie
	seen := make(map[string]struct{})
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad movieId %q: %w", rec[0], err)
		}
		title := strings.TrimSpace(rec[1])
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}

		movies = append(movies, catalog.Movie{ID: id, Title: title, Genres: rec[2]})
		if limit > 0 && len(movies) >= limit {
			break
		}
	}
	return movies, nil
}

// readTags parses a MovieLens tags CSV into per-movie tag lists.
func readTags(path string) (map[int64][]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tags := make(map[int64][]string)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad movieId %q: %w", rec[1], err)
		}
		if tag := strings.TrimSpace(rec[2]); tag != "" {
			tags[id] = append(tags[id], tag)
		}
	}
	return tags, nil
}

func writeBlob(dir, name string, encode func(io.Writer) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
