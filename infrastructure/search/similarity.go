// Package search provides in-memory cosine similarity ranking over stored
// product embeddings.
package search

import (
	"math"
	"sort"
)

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical).
// Returns 0 if either vector has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, magA, magB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
}

// SimilarityMatch holds a record ID and its similarity score.
type SimilarityMatch struct {
	recordID   int64
	similarity float64
}

// NewSimilarityMatch creates a new SimilarityMatch.
func NewSimilarityMatch(recordID int64, similarity float64) SimilarityMatch {
	return SimilarityMatch{
		recordID:   recordID,
		similarity: similarity,
	}
}

// RecordID returns the record identifier.
func (m SimilarityMatch) RecordID() int64 { return m.recordID }

// Similarity returns the similarity score.
func (m SimilarityMatch) Similarity() float64 { return m.similarity }

// StoredVector holds an embedding vector with its record ID.
type StoredVector struct {
	recordID  int64
	embedding []float64
}

// NewStoredVector creates a new StoredVector.
func NewStoredVector(recordID int64, embedding []float64) StoredVector {
	vec := make([]float64, len(embedding))
	copy(vec, embedding)
	return StoredVector{
		recordID:  recordID,
		embedding: vec,
	}
}

// RecordID returns the record identifier.
func (v StoredVector) RecordID() int64 { return v.recordID }

// Embedding returns the embedding vector (copy).
func (v StoredVector) Embedding() []float64 {
	result := make([]float64, len(v.embedding))
	copy(result, v.embedding)
	return result
}

// TopKSimilar finds the top-k most similar vectors to the query.
// Results are sorted by similarity descending; ties keep the input order,
// so repeated searches over the same candidate set rank identically.
func TopKSimilar(query []float64, vectors []StoredVector, k int) []SimilarityMatch {
	if len(vectors) == 0 || k <= 0 {
		return []SimilarityMatch{}
	}

	matches := make([]SimilarityMatch, 0, len(vectors))
	for _, v := range vectors {
		similarity := CosineSimilarity(query, v.embedding)
		matches = append(matches, NewSimilarityMatch(v.recordID, similarity))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k]
}
