package router

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		numSources int
		expected   Route
	}{
		{"title question", "What is the title?", 1, RouteTitle},
		{"title uppercase", "WHAT IS THE TITLE of this?", 1, RouteTitle},
		{"name of paper", "Tell me the name of this paper", 1, RouteTitle},
		{"page count", "How many pages does it have?", 1, RoutePageCount},
		{"paper length", "how long is the paper", 1, RoutePageCount},
		{"about paper", "What is this paper about?", 1, RouteAboutPaper},
		{"summarize", "Please summarize this paper", 1, RouteAboutPaper},
		{"plain question", "What loss function do they use?", 1, RouteGroundedQA},
		{"title without source", "What is the title?", 0, RouteGroundedQA},
		{"about without source", "What is this paper about?", 0, RouteGroundedQA},
		{"multiple sources still shortcuts", "what is the title", 3, RouteTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.question, tt.numSources); got != tt.expected {
				t.Errorf("Classify(%q, %d) = %s; want %s", tt.question, tt.numSources, got, tt.expected)
			}
		})
	}
}

// A question hitting both a title and an about-paper pattern must take the
// title shortcut.
func TestClassify_TitleWinsOverAbout(t *testing.T) {
	q := "What is the title, and what is this paper about?"
	if got := Classify(q, 1); got != RouteTitle {
		t.Errorf("Classify(%q) = %s; want %s", q, got, RouteTitle)
	}
}
