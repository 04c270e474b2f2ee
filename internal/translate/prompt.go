// Package translate performs glossary-assisted translation: the terms most
// similar to a passage are injected into a prompt for a chat-completions model.
package translate

import (
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// BuildPrompt returns the translation prompt for text. Each related term is
// listed with its definition cut to previewLen runes; with no terms the
// reference section is omitted.
func BuildPrompt(text, targetLanguage string, terms []models.Match, previewLen int) string {
	var b strings.Builder
	b.WriteString("You are a professional translator. Translate the text below into ")
	b.WriteString(targetLanguage)
	b.WriteString(".\n\nRequirements:\n")
	b.WriteString("1. Preserve the meaning and style of the original.\n")
	b.WriteString("2. Render technical terms accurately.\n")
	b.WriteString("3. Make the translation read naturally.\n")
	b.WriteString("4. Where related terms are given, follow them.\n")

	if len(terms) > 0 {
		b.WriteString("\nRelated terms:\n")
		for _, t := range terms {
			b.WriteString("- ")
			b.WriteString(t.Term)
			b.WriteString(": ")
			b.WriteString(utils.Truncate(t.Definition, previewLen))
			b.WriteByte('\n')
		}
	}

	b.WriteString("\nText to translate:\n")
	b.WriteString(text)
	b.WriteString("\n\nOutput only the translation, without explanations or notes.")
	return b.String()
}
