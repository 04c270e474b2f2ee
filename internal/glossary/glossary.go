// Package glossary parses glossary files into terms and imports them into the
// corpus store.
package glossary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kotoba/internal/models"
)

// Extensions lists the file extensions Parse understands.
var Extensions = []string{".tsv", ".txt", ".md", ".csv", ".xlsx", ".pdf", ".docx"}

// Supported reports whether path has an extension Parse understands.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ParseFile reads the glossary at path and returns its terms.
func ParseFile(path string) ([]models.Term, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(content, strings.ToLower(filepath.Ext(path)))
}

// Parse returns the terms in content, interpreted according to ext (with the
// leading dot). Entries without a word or a definition are dropped.
func Parse(content []byte, ext string) ([]models.Term, error) {
	switch ext {
	case ".csv":
		return parseCSV(content)
	case ".xlsx":
		return parseExcel(content)
	case ".pdf":
		text, err := extractPDF(content)
		if err != nil {
			return nil, err
		}
		return ParseLines(text), nil
	case ".docx":
		paragraphs, err := extractDOCXParagraphs(content)
		if err != nil {
			return nil, err
		}
		return ParseLines(strings.Join(paragraphs, "\n")), nil
	case ".tsv", ".txt", ".md", "":
		return ParseLines(plainText(content)), nil
	default:
		return nil, fmt.Errorf("unsupported glossary format %q", ext)
	}
}

// plainText returns content as a string, replacing invalid UTF-8.
func plainText(content []byte) string {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�")
	}
	return string(content)
}
