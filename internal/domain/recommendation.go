package domain

import "math"

// Metadata is externally sourced movie metadata. All fields are best-effort.
type Metadata struct {
	PosterURL   string  `json:"poster_url"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Rating      float64 `json:"rating"`
}

// Recommendation is a single ranked result. Metadata is nil when enrichment
// was skipped or failed; the core fields are always present.
type Recommendation struct {
	MovieID  int64
	Title    string
	Genres   string
	Score    float64
	Metadata *Metadata
}

// ScorePercent returns the similarity as a percentage rounded to one decimal.
func (r Recommendation) ScorePercent() float64 {
	return math.Round(r.Score*1000) / 10
}
