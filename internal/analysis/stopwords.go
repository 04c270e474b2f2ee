package analysis

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

// stopWords is Bleve's Snowball English stop list, loaded once.
var stopWords = mustLoadStopWords()

func mustLoadStopWords() analysis.TokenMap {
	tm := analysis.NewTokenMap()
	if err := tm.LoadBytes(en.EnglishStopWords); err != nil {
		panic(fmt.Sprintf("load english stop words: %v", err))
	}
	return tm
}

// IsStopWord reports whether word (already lowercased) is an English function word.
func IsStopWord(word string) bool {
	return stopWords[word]
}
