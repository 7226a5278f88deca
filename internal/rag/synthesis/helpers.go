package synthesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
)

// sourceGroups keeps chunks bucketed by source filename while remembering
// the order sources first appeared in the ranked retrieval.
type sourceGroups struct {
	order  []string
	chunks map[string][]commonModels.ScoredChunk
}

func groupBySource(chunks []commonModels.ScoredChunk) sourceGroups {
	g := sourceGroups{chunks: make(map[string][]commonModels.ScoredChunk)}
	for _, c := range chunks {
		source := c.Source
		if source == "" {
			source = "unknown"
		}
		if _, seen := g.chunks[source]; !seen {
			g.order = append(g.order, source)
		}
		g.chunks[source] = append(g.chunks[source], c)
	}
	return g
}

// renderContext writes one page-annotated block per source:
//
//	--- Document: a.pdf ---
//	[Page 3]: chunk text
func renderContext(g sourceGroups, label string) string {
	var parts []string
	for _, source := range g.order {
		var b strings.Builder
		fmt.Fprintf(&b, "\n\n--- %s: %s ---\n", label, source)
		for _, c := range g.chunks[source] {
			fmt.Fprintf(&b, "\n[Page %d]: %s\n", c.Page, c.Text)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// parseFirstJSONObject finds the first balanced {...} substring of the
// model's response and unmarshals it. Models love wrapping their JSON in
// markdown fences and prose, so a plain Unmarshal of the whole response
// almost never works.
func parseFirstJSONObject(response string, v any) error {
	start := strings.Index(response, "{")
	if start < 0 {
		return errors.New("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return json.Unmarshal([]byte(response[start:i+1]), v)
				}
			}
		}
	}
	return errors.New("unbalanced JSON object in response")
}

var citationPattern = regexp.MustCompile(`\[([^,\]]+),\s*p\.(\d+)\]`)

func extractCitations(text string) []queryModel.ReviewCitation {
	citations := []queryModel.ReviewCitation{}
	for _, match := range citationPattern.FindAllStringSubmatch(text, -1) {
		page, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		citations = append(citations, queryModel.ReviewCitation{
			Paper: strings.TrimSpace(match[1]),
			Page:  page,
		})
	}
	return citations
}
