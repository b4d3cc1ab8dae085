package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{1, 0, 0},
			expected: 1.0,
		},
		{
			name:     "opposite vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{-1, 0, 0},
			expected: -1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float64{1, 0, 0},
			b:        []float64{0, 1, 0},
			expected: 0.0,
		},
		{
			name:     "zero vector a",
			a:        []float64{0, 0, 0},
			b:        []float64{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "zero vector b",
			a:        []float64{1, 0, 0},
			b:        []float64{0, 0, 0},
			expected: 0.0,
		},
		{
			name:     "length mismatch",
			a:        []float64{1, 0},
			b:        []float64{1, 0, 0},
			expected: 0.0,
		},
		{
			name:     "empty vectors",
			a:        []float64{},
			b:        []float64{},
			expected: 0.0,
		},
		{
			name:     "scaled vectors are identical",
			a:        []float64{1, 2, 3},
			b:        []float64{2, 4, 6},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 1e-9)
		})
	}
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	vectors := [][]float64{
		{0.3, -0.2, 0.9},
		{-0.5, 0.5, 0.1},
		{0.7, 0.7, 0.7},
	}
	query := []float64{0.1, 0.4, -0.8}

	for _, v := range vectors {
		sim := CosineSimilarity(query, v)
		assert.GreaterOrEqual(t, sim, -1.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestTopKSimilar(t *testing.T) {
	vectors := []StoredVector{
		NewStoredVector(1, []float64{1, 0}),
		NewStoredVector(2, []float64{0, 1}),
		NewStoredVector(3, []float64{0.9, 0.1}),
	}
	query := []float64{1, 0}

	matches := TopKSimilar(query, vectors, 2)

	assert.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].RecordID())
	assert.Equal(t, int64(3), matches[1].RecordID())
	assert.InDelta(t, 1.0, matches[0].Similarity(), 1e-9)
}

func TestTopKSimilar_KLargerThanInput(t *testing.T) {
	vectors := []StoredVector{
		NewStoredVector(1, []float64{1, 0}),
	}

	matches := TopKSimilar([]float64{1, 0}, vectors, 10)
	assert.Len(t, matches, 1)
}

func TestTopKSimilar_EmptyInput(t *testing.T) {
	assert.Empty(t, TopKSimilar([]float64{1}, nil, 5))
	assert.Empty(t, TopKSimilar([]float64{1}, []StoredVector{NewStoredVector(1, []float64{1})}, 0))
}

func TestTopKSimilar_StableTieBreak(t *testing.T) {
	// Identical vectors tie exactly; input order must decide.
	vectors := []StoredVector{
		NewStoredVector(10, []float64{1, 1}),
		NewStoredVector(20, []float64{1, 1}),
		NewStoredVector(30, []float64{1, 1}),
	}

	matches := TopKSimilar([]float64{1, 1}, vectors, 3)

	assert.Equal(t, int64(10), matches[0].RecordID())
	assert.Equal(t, int64(20), matches[1].RecordID())
	assert.Equal(t, int64(30), matches[2].RecordID())
}
