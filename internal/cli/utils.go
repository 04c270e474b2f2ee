// Package cli provides CLI output helpers for kotoba.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// OutputFormat is the format for retrieval output.
type OutputFormat string

const (
	// OutputText is human-readable text with definitions (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one "term<TAB>score" line per match.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteMatches writes a retrieval response to w in the given format.
// previewLen truncates definitions in text output; 0 disables truncation.
func WriteMatches(w io.Writer, response *models.RetrieveResponse, format OutputFormat, previewLen int) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, m := range response.Matches {
			if _, err := fmt.Fprintf(w, "%s\t%.4f\n", m.Term, m.Score); err != nil {
				return err
			}
		}
		return nil
	default:
		writeMatchesText(w, response, previewLen)
		return nil
	}
}

func writeMatchesText(w io.Writer, response *models.RetrieveResponse, previewLen int) {
	fmt.Fprintf(w, "\nFound %d terms in %dms", len(response.Matches), response.QueryTime)
	if response.Normalized != "" {
		fmt.Fprintf(w, " (normalized query: %q)", response.Normalized)
	}
	fmt.Fprint(w, "\n\n")
	for i, m := range response.Matches {
		fmt.Fprintf(w, "%2d. %s  [%.4f]\n", i+1, m.Term, m.Score)
		if m.Definition != "" {
			fmt.Fprintf(w, "    %s\n", utils.Truncate(m.Definition, previewLen))
		}
	}
}

// WriteTranslation writes a translation response in the given format.
// Compact output is the bare translation.
func WriteTranslation(w io.Writer, response *models.TranslateResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		_, err := fmt.Fprintln(w, response.Translation)
		return err
	default:
		fmt.Fprintf(w, "\n%s\n\n", response.Translation)
		if len(response.Terms) > 0 {
			fmt.Fprintln(w, "--- Terms used ---")
			for _, m := range response.Terms {
				fmt.Fprintf(w, "%s  [%.4f]\n", m.Term, m.Score)
			}
		}
		fmt.Fprintf(w, "\n(%dms)\n", response.QueryTime)
		return nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
