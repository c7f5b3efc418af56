// Package catalog holds the fixed-order movie catalog and its derived
// title index. The catalog is immutable after construction; index positions
// are stable and match the row/column order of the similarity matrix.
package catalog

import (
	"fmt"
	"sort"
)

// Movie is a single catalog entry. Genres is the raw pipe-separated genre
// string from the source dataset (e.g. "Action|Adventure").
type Movie struct {
	ID     int64  `json:"movie_id"`
	Title  string `json:"title"`
	Genres string `json:"genres"`
}

// Catalog is a read-only, fixed-order sequence of movies with an O(1)
// title-to-index lookup built once at construction.
type Catalog struct {
	movies  []Movie
	byTitle map[string]int
}

// New builds a catalog from the given movies. Titles must be unique;
// lookup is exact and case-sensitive.
func New(movies []Movie) (*Catalog, error) {
	byTitle := make(map[string]int, len(movies))
	for i, m := range movies {
		if m.Title == "" {
			return nil, fmt.Errorf("catalog entry %d has an empty title", i)
		}
		if prev, ok := byTitle[m.Title]; ok {
			return nil, fmt.Errorf("duplicate title %q at positions %d and %d", m.Title, prev, i)
		}
		byTitle[m.Title] = i
	}
	return &Catalog{movies: movies, byTitle: byTitle}, nil
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.movies) }

// At returns the movie at index i. Panics if i is out of range, matching
// slice semantics; callers resolve indices via IndexOf or matrix rows.
func (c *Catalog) At(i int) Movie { return c.movies[i] }

// IndexOf resolves a title to its catalog index.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.byTitle[title]
	return i, ok
}

// Titles returns all titles sorted alphabetically. The returned slice is a
// copy; catalog order is not affected.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.movies))
	for i, m := range c.movies {
		titles[i] = m.Title
	}
	sort.Strings(titles)
	return titles
}
