// Package vectorize implements the offline genre/tag count vectorizer and
// the cosine similarity used to build the precomputed matrix. Nothing here
// runs on the serving path; the fitted vocabulary is persisted alongside the
// data blobs for reproducibility only.
package vectorize

import (
	"sort"
	"strings"
	"unicode"
)

// Vectorizer is a fitted bag-of-words model: each known token maps to a
// column in the output vector.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
}

// Fit builds a vocabulary over all tokens in docs. Columns are assigned in
// sorted token order so fitting is deterministic.
func Fit(docs []string) *Vectorizer {
	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range tokenize(doc) {
			seen[tok] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	vocab := make(map[string]int, len(tokens))
	for i, tok := range tokens {
		vocab[tok] = i
	}
	return &Vectorizer{Vocabulary: vocab}
}

// Transform converts a document into a count vector over the fitted
// vocabulary. Unknown tokens are ignored.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.Vocabulary))
	for _, tok := range tokenize(doc) {
		if col, ok := v.Vocabulary[tok]; ok {
			vec[col]++
		}
	}
	return vec
}

// tokenize lowercases and splits on anything that is not a letter or digit,
// so "Sci-Fi|Action" yields ["sci", "fi", "action"].
func tokenize(doc string) []string {
	return strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
