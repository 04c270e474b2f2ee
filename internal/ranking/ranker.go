// Package ranking orders corpus rows by cosine similarity to a query vector.
package ranking

import (
	"container/heap"
	"sort"

	"github.com/hyperjump/kotoba/internal/vector"
)

// Scored is a matrix row with its similarity to the query.
type Scored struct {
	Index int
	Score float64
}

// TopK returns the k rows of m most similar to query, by descending score.
// Equal scores are ordered by lower row index. The result has min(k, m.Rows())
// entries; k <= 0 yields an empty slice.
func TopK(query vector.SparseVector, m *vector.Matrix, k int) []Scored {
	if k <= 0 || m == nil || m.Rows() == 0 {
		return []Scored{}
	}
	return selectTop(m.Scores(query), k)
}

// selectTop keeps a min-heap of the best k candidates, so the whole score
// slice is never sorted.
func selectTop(scores []float64, k int) []Scored {
	if k > len(scores) {
		k = len(scores)
	}
	h := make(minHeap, 0, k)
	for i, s := range scores {
		c := Scored{Index: i, Score: s}
		if len(h) < k {
			heap.Push(&h, c)
			continue
		}
		if better(c, h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}
	out := []Scored(h)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// better reports whether a ranks ahead of b.
func better(a, b Scored) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Index < b.Index
}

// minHeap has the worst-ranked candidate at the root.
type minHeap []Scored

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minHeap) Push(x any) { *h = append(*h, x.(Scored)) }

func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
