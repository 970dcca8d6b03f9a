// Package search defines the search result types returned by the
// retrieval pipeline.
package search

import "github.com/componentry/compodex/internal/domain/component"

// Result is a single nearest-neighbor hit. Distance is the cosine
// distance to the query; Score = 1 - Distance. Results are produced only
// as query responses and never persisted.
type Result struct {
	ID       string             `json:"id"`
	Metadata component.Metadata `json:"metadata"`
	Document string             `json:"document"`
	Distance float64            `json:"distance"`
	Score    float64            `json:"score"`
}

// FromDistance builds a Result, deriving the similarity score.
func FromDistance(id string, meta component.Metadata, document string, distance float64) Result {
	return Result{
		ID:       id,
		Metadata: meta,
		Document: document,
		Distance: distance,
		Score:    1 - distance,
	}
}
