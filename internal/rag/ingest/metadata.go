package ingest

import (
	"regexp"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
)

var abstractPattern = regexp.MustCompile(`(?is)abstract[:\s]*(.*)`)

// ExtractTitleAndAbstract applies the page-0 heuristics:
//   - title = first up to three non-empty lines joined with spaces
//   - abstract = text following the (case-insensitive) token "abstract",
//     truncated at the next blank line
//
// Either result may legitimately be empty; the heuristics never fail hard.
func ExtractTitleAndAbstract(text string) (string, string) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == config.TitleMaxLines {
			break
		}
	}
	title := strings.Join(lines, " ")

	abstract := ""
	if match := abstractPattern.FindStringSubmatch(text); match != nil {
		abstract = strings.TrimSpace(strings.SplitN(match[1], "\n\n", 2)[0])
	}

	return title, abstract
}
