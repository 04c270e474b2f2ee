package search

import (
	"sort"

	"github.com/hyperjump/kotoba/internal/analysis"
)

// Suggest returns up to n glossary words within a small edit distance of word,
// closest first. Words are compared after normalization; the allowed distance
// is 1 for words up to 4 letters, 2 up to 8 and 3 beyond. It returns nil
// before the model is initialized.
func (e *Engine) Suggest(word string, n int) []string {
	m := e.model.Load()
	if m == nil || n <= 0 {
		return nil
	}
	target := analysis.Normalize(word)
	if target == "" {
		return nil
	}
	maxDist := maxEditDistance(len(target))

	type candidate struct {
		word string
		dist int
		idx  int
	}
	var found []candidate
	for i, t := range m.Terms {
		norm := analysis.Normalize(t.Word)
		if d := len(norm) - len(target); d > maxDist || -d > maxDist {
			continue
		}
		if dist := analysis.EditDistance(target, norm); dist <= maxDist {
			found = append(found, candidate{word: t.Word, dist: dist, idx: i})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].idx < found[j].idx
	})
	if len(found) > n {
		found = found[:n]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.word
	}
	return out
}

func maxEditDistance(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}
