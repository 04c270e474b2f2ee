// Package models defines core data structures for glossary terms, queries, and matches.
package models

// Term is a glossary headword with its definition. Word is unique within a corpus.
type Term struct {
	Word       string `json:"word" db:"word"`
	Definition string `json:"definition" db:"definition"`
}

// Match is one ranked retrieval hit. Score is a cosine similarity in [0, 1].
type Match struct {
	Term       string  `json:"term"`
	Definition string  `json:"definition"`
	Score      float64 `json:"score"`
}
