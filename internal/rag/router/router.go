package router

import (
	"regexp"
	"strings"
)

// Route is the classified intent of a question. Classification is pure
// string matching, the index is never consulted here.
type Route string

const (
	RouteTitle      Route = "title"
	RoutePageCount  Route = "page_count"
	RouteAboutPaper Route = "about_paper"
	RouteGroundedQA Route = "grounded_qa"
)

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btitle\b`),
	regexp.MustCompile(`\bpaper title\b`),
	regexp.MustCompile(`\bwhat is the title\b`),
	regexp.MustCompile(`\bname of (this|the) paper\b`),
}

var pageCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bhow many pages\b`),
	regexp.MustCompile(`\bnumber of pages\b`),
	regexp.MustCompile(`\bpage count\b`),
	regexp.MustCompile(`\bhow long is (this|the) paper\b`),
}

var aboutPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat is this paper about\b`),
	regexp.MustCompile(`\bwhat's this paper about\b`),
	regexp.MustCompile(`\bwhat does this paper do\b`),
	regexp.MustCompile(`\bsummar(y|ize) this paper\b`),
	regexp.MustCompile(`\boverview of (this|the) paper\b`),
	regexp.MustCompile(`\bmain idea of (this|the) paper\b`),
	regexp.MustCompile(`\bwhat is the paper about\b`),
	regexp.MustCompile(`\bwhat does the paper propose\b`),
	regexp.MustCompile(`\bwhat is proposed in this paper\b`),
}

func matchesAny(question string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(question) {
			return true
		}
	}
	return false
}

// Classify picks the route for a question. First match wins: title beats
// page count beats about-paper beats the grounded default. The metadata
// shortcuts only fire when the caller named at least one source, otherwise
// there is no Document record to read the answer from.
func Classify(question string, numSources int) Route {
	q := strings.ToLower(strings.TrimSpace(question))

	if numSources >= 1 {
		if matchesAny(q, titlePatterns) {
			return RouteTitle
		}
		if matchesAny(q, pageCountPatterns) {
			return RoutePageCount
		}
		if matchesAny(q, aboutPatterns) {
			return RouteAboutPaper
		}
	}

	return RouteGroundedQA
}
