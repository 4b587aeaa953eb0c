// Package similarity builds TF-IDF document vectors and the pairwise cosine
// similarity matrix used to rank health content.
//
// Weighting follows the scikit-learn TfidfVectorizer defaults: lowercase
// text, tokens of two or more word characters, raw term counts, smoothed idf
// and L2-normalised rows.
package similarity

import (
	"math"
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Vector is a sparse, L2-normalised TF-IDF vector keyed by vocabulary index.
type Vector map[int]float64

// Dot returns the inner product of two vectors.
func (v Vector) Dot(other Vector) float64 {
	if len(other) < len(v) {
		v, other = other, v
	}
	var sum float64
	for term, w := range v {
		sum += w * other[term]
	}
	return sum
}

// Tokenize lowercases text and splits it into terms.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Vectorize fits a vocabulary over docs and returns one vector per document
// together with the vocabulary (term -> index).
func Vectorize(docs []string) ([]Vector, map[string]int) {
	vocab := make(map[string]int)
	counts := make([]map[int]float64, len(docs))
	df := make(map[int]int)

	for i, doc := range docs {
		tf := make(map[int]float64)
		for _, tok := range Tokenize(doc) {
			idx, ok := vocab[tok]
			if !ok {
				idx = len(vocab)
				vocab[tok] = idx
			}
			if tf[idx] == 0 {
				df[idx]++
			}
			tf[idx]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	idf := make(map[int]float64, len(df))
	for idx, d := range df {
		idf[idx] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, tf := range counts {
		vec := make(Vector, len(tf))
		var norm float64
		for idx, c := range tf {
			w := c * idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		vectors[i] = vec
	}
	return vectors, vocab
}

// Matrix is a dense, read-only table of pairwise cosine similarities.
type Matrix struct {
	n      int
	scores []float64
}

// NewMatrix vectorizes docs and computes every pairwise score.
func NewMatrix(docs []string) *Matrix {
	vectors, _ := Vectorize(docs)
	n := len(vectors)
	m := &Matrix{n: n, scores: make([]float64, n*n)}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := vectors[i].Dot(vectors[j])
			m.scores[i*n+j] = s
			m.scores[j*n+i] = s
		}
	}
	return m
}

func (m *Matrix) Len() int { return m.n }

// Score returns the similarity between documents i and j.
func (m *Matrix) Score(i, j int) float64 {
	return m.scores[i*m.n+j]
}

// Row returns a copy of the scores of document i against every document.
func (m *Matrix) Row(i int) []float64 {
	row := make([]float64, m.n)
	copy(row, m.scores[i*m.n:(i+1)*m.n])
	return row
}
