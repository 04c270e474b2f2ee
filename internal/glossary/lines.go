package glossary

import (
	"html"
	"regexp"
	"strings"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/pkg/utils"
)

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// separators split a line into word and definition at the earliest one found.
var separators = []string{"\t", " = ", "：", ": "}

// ParseLines parses one entry per line. A line is "word<TAB>definition",
// "word = definition" or "word: definition"; blank lines, "#" comments and
// markdown table separators are skipped. Markdown list bullets, bold markers
// and "| word | definition |" table rows are accepted.
func ParseLines(text string) []models.Term {
	var terms []models.Term
	for _, line := range strings.Split(text, "\n") {
		if t, ok := parseLine(line); ok {
			terms = append(terms, t)
		}
	}
	return terms
}

func parseLine(line string) (models.Term, bool) {
	line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
	if line == "" || strings.HasPrefix(line, "#") {
		return models.Term{}, false
	}
	if strings.HasPrefix(line, "|") {
		return parseTableRow(line)
	}
	for _, bullet := range []string{"- ", "* ", "+ "} {
		line = strings.TrimPrefix(line, bullet)
	}
	line = strings.ReplaceAll(line, "**", "")
	sep, at := firstSeparator(line)
	if at < 0 {
		return models.Term{}, false
	}
	return makeTerm(line[:at], line[at+len(sep):])
}

// firstSeparator returns the separator that occurs earliest in line and its
// byte offset, or -1 when line has none. On a tie the longer separator wins.
func firstSeparator(line string) (string, int) {
	best, at := "", -1
	for _, sep := range separators {
		i := strings.Index(line, sep)
		if i < 0 {
			continue
		}
		if at < 0 || i < at || (i == at && len(sep) > len(best)) {
			best, at = sep, i
		}
	}
	return best, at
}

func parseTableRow(line string) (models.Term, bool) {
	var cells []string
	for _, c := range strings.Split(strings.Trim(line, "|"), "|") {
		cells = append(cells, strings.TrimSpace(c))
	}
	if len(cells) < 2 || strings.Trim(cells[0], "-: ") == "" {
		return models.Term{}, false
	}
	if isHeader(cells[0], cells[1]) {
		return models.Term{}, false
	}
	return makeTerm(strings.ReplaceAll(cells[0], "**", ""), cells[1])
}

// isHeader reports whether a two-column row looks like a column header.
func isHeader(word, definition string) bool {
	w := strings.ToLower(strings.TrimSpace(word))
	d := strings.ToLower(strings.TrimSpace(definition))
	return (w == "word" || w == "term") && (d == "definition" || d == "meaning" || d == "translation")
}

func makeTerm(word, definition string) (models.Term, bool) {
	word = utils.CollapseSpaces(word)
	definition = CleanDefinition(definition)
	if word == "" || definition == "" {
		return models.Term{}, false
	}
	return models.Term{Word: word, Definition: definition}, true
}

// Clean normalizes terms the way parsed entries are normalized and drops
// those left without a word or definition. It returns the kept terms and the
// number dropped.
func Clean(terms []models.Term) ([]models.Term, int) {
	kept := make([]models.Term, 0, len(terms))
	for _, t := range terms {
		if c, ok := makeTerm(t.Word, t.Definition); ok {
			kept = append(kept, c)
		}
	}
	return kept, len(terms) - len(kept)
}

// CleanDefinition strips HTML tags, unescapes entities and collapses whitespace.
func CleanDefinition(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return utils.CollapseSpaces(s)
}
