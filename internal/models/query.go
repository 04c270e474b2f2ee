package models

import "fmt"

// RetrieveQuery is a request for the K glossary terms closest to Query.
type RetrieveQuery struct {
	Query string `json:"query"`
	// K is the number of matches wanted. Zero means the configured default;
	// a negative value yields no matches.
	K int `json:"k,omitempty"`
}

// Validate applies the default K and caps it at maxK.
// An empty query is valid: it simply scores zero against every term.
func (q *RetrieveQuery) Validate(defaultK, maxK int) error {
	if maxK <= 0 {
		return fmt.Errorf("max k must be positive, got %d", maxK)
	}
	if q.K == 0 {
		q.K = defaultK
	}
	if q.K > maxK {
		q.K = maxK
	}
	return nil
}

// TranslateRequest asks for a glossary-assisted translation of Text.
type TranslateRequest struct {
	Text string `json:"text"`
	K    int    `json:"k,omitempty"`
}

// Validate ensures the text is present and normalizes K like RetrieveQuery.
func (r *TranslateRequest) Validate(defaultK, maxK int) error {
	if r.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	q := RetrieveQuery{K: r.K}
	if err := q.Validate(defaultK, maxK); err != nil {
		return err
	}
	r.K = q.K
	return nil
}
