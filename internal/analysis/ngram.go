package analysis

import "strings"

const (
	// MinGram is the shortest n-gram used as a feature.
	MinGram = 1
	// MaxGram is the longest n-gram used as a feature.
	MaxGram = 3
	// MinTokenLen is the shortest word that takes part in features.
	MinTokenLen = 2
)

// Features returns every contiguous n-gram (MinGram..MaxGram words) of tokens,
// in order of appearance, with repeats. Unigrams that are stop words are
// dropped; longer n-grams keep their stop words.
func Features(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens)*MaxGram)
	for n := MinGram; n <= MaxGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				if IsStopWord(tokens[i]) {
					continue
				}
				out = append(out, tokens[i])
				continue
			}
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// TextFeatures normalizes text and returns its n-gram features. Words shorter
// than MinTokenLen are dropped before n-grams are formed, so "c programming
// language" yields the same features as "programming language".
func TextFeatures(text string) []string {
	tokens := Tokens(text)
	kept := tokens[:0]
	for _, tok := range tokens {
		if len(tok) >= MinTokenLen {
			kept = append(kept, tok)
		}
	}
	return Features(kept)
}
