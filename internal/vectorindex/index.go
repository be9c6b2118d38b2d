package vectorindex

import (
	"errors"
	"math"
	"sort"
)

// Match pairs a chunk index with its cosine similarity to the query.
type Match struct {
	ChunkIndex int
	Score      float64
}

// Index is an in-memory similarity index scoped to a single analysis
// call. Vectors live for the duration of the call and are discarded
// with the index.
type Index struct {
	dimension int
	indices   []int
	vectors   [][]float64
}

func New() *Index { return &Index{} }

// Add registers a chunk vector. The first vector fixes the dimension;
// later vectors must match it.
func (x *Index) Add(chunkIndex int, vec []float64) error {
	if len(vec) == 0 {
		return errors.New("empty vector")
	}
	if x.dimension == 0 {
		x.dimension = len(vec)
	} else if len(vec) != x.dimension {
		return errors.New("vector dimension mismatch")
	}
	x.indices = append(x.indices, chunkIndex)
	x.vectors = append(x.vectors, vec)
	return nil
}

// Len reports the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Rank orders all indexed chunks by descending cosine similarity to
// the query, breaking ties by lowest chunk index, filters out scores
// below floor, and returns at most topK matches. Zero vectors score -1
// so they rank last and never clear a non-negative floor.
func (x *Index) Rank(query []float64, floor float64, topK int) []Match {
	if topK <= 0 {
		topK = 5
	}
	matches := make([]Match, 0, len(x.vectors))
	for i, vec := range x.vectors {
		matches = append(matches, Match{ChunkIndex: x.indices[i], Score: Cosine(query, vec)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkIndex < matches[j].ChunkIndex
	})
	out := make([]Match, 0, topK)
	for _, m := range matches {
		if m.Score < floor {
			break
		}
		out = append(out, m)
		if len(out) == topK {
			break
		}
	}
	return out
}

// Cosine computes cosine similarity between two vectors. A zero vector
// on either side yields -1 rather than a division by zero, placing it
// after every real match.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return -1
	}
	return dot / den
}
