package models

// RetrieveResponse is the response for a retrieval request.
type RetrieveResponse struct {
	Query string `json:"query"`
	// Normalized is the query text after normalization, as it entered the vector space.
	Normalized string  `json:"normalized"`
	Matches    []Match `json:"matches"`
	QueryTime  int64   `json:"query_time_ms"`
}

// TranslateResponse is the response for a translation request.
type TranslateResponse struct {
	Text        string  `json:"text"`
	Translation string  `json:"translation"`
	Terms       []Match `json:"terms"`
	QueryTime   int64   `json:"query_time_ms"`
}
