package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"exercise", "for", "healthy", "heart"}, Tokenize("Exercise for a Healthy Heart"))
	assert.Equal(t, []string{"type_2", "diabetes", "10k", "steps"}, Tokenize("Type_2 diabetes: 10k steps!"))
	assert.Empty(t, Tokenize("a b c"))
}

func TestVectorizeIsNormalised(t *testing.T) {
	vectors, vocab := Vectorize([]string{"heart health heart", "lung health", "a"})
	require.Len(t, vectors, 3)
	assert.Len(t, vocab, 3)

	for i, v := range vectors[:2] {
		assert.InDelta(t, 1.0, v.Dot(v), 1e-9, "vector %d", i)
	}
	assert.Empty(t, vectors[2])
}

func TestVectorizeSmoothedIDF(t *testing.T) {
	// Two docs: "heart" in both, "lung" in one.
	// idf(heart) = ln(3/3)+1 = 1, idf(lung) = ln(3/2)+1.
	vectors, vocab := Vectorize([]string{"heart lung", "heart"})
	heart, lung := vocab["heart"], vocab["lung"]

	idfLung := math.Log(1.5) + 1
	norm := math.Sqrt(1 + idfLung*idfLung)

	assert.InDelta(t, 1/norm, vectors[0][heart], 1e-9)
	assert.InDelta(t, idfLung/norm, vectors[0][lung], 1e-9)
	assert.InDelta(t, 1.0, vectors[1][heart], 1e-9)
}

func TestMatrix(t *testing.T) {
	docs := []string{
		"Exercise for a Healthy Heart",
		"Heart healthy diet",
		"Sleep hygiene basics",
	}
	m := NewMatrix(docs)
	require.Equal(t, 3, m.Len())

	for i := 0; i < m.Len(); i++ {
		assert.InDelta(t, 1.0, m.Score(i, i), 1e-9)
		for j := 0; j < m.Len(); j++ {
			assert.Equal(t, m.Score(i, j), m.Score(j, i))
		}
	}

	assert.Greater(t, m.Score(0, 1), 0.0)
	assert.Zero(t, m.Score(0, 2))

	row := m.Row(0)
	row[1] = -1
	assert.NotEqual(t, -1.0, m.Score(0, 1), "Row must not expose internal storage")
}

func TestMatrixEmpty(t *testing.T) {
	m := NewMatrix(nil)
	assert.Zero(t, m.Len())
}
