package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type mockIndex struct {
	searchFunc func(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error)
}

func (m *mockIndex) Add(ctx context.Context, session string, chunks []commonModels.Chunk) error {
	return nil
}
func (m *mockIndex) Search(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
	return m.searchFunc(ctx, session, query, k, filter)
}
func (m *mockIndex) Delete(ctx context.Context, session string, filter commonModels.DeleteFilter) error {
	return nil
}
func (m *mockIndex) DropSession(ctx context.Context, session string) error { return nil }

type mockLLM struct {
	invokeFunc func(ctx context.Context, prompt string) (string, error)
	calls      int
}

func (m *mockLLM) Invoke(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.invokeFunc(ctx, prompt)
}

func chunk(source string, page int, text string) commonModels.ScoredChunk {
	return commonModels.ScoredChunk{
		Chunk: commonModels.Chunk{
			Id:     "id-" + text,
			Text:   text,
			Source: source,
			Page:   page,
			Type:   commonModels.ChunkTypeDocument,
		},
		Score: 0.8,
	}
}

func twoPaperIndex(t *testing.T, wantK int) *mockIndex {
	return &mockIndex{
		searchFunc: func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
			if k != wantK {
				t.Errorf("retrieval used k=%d; want %d", k, wantK)
			}
			if filter.ExcludeType != commonModels.ChunkTypeHighlight {
				t.Errorf("retrieval filter does not exclude highlights: %+v", filter)
			}
			return []commonModels.ScoredChunk{
				chunk("a.pdf", 1, "alpha findings"),
				chunk("b.pdf", 2, "beta findings"),
				chunk("a.pdf", 3, "more alpha"),
			}, nil
		},
	}
}

func TestCompare_ParsesClaims(t *testing.T) {
	model := &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		if !strings.Contains(prompt, "--- Document: a.pdf ---") {
			t.Error("prompt missing per-source context block")
		}
		if !strings.Contains(prompt, "[Page 2]: beta findings") {
			t.Error("prompt missing page annotation")
		}
		return "Here is my analysis:\n```json\n" + `{
  "claims": [
    {
      "claim": "Alpha works",
      "papers": [
        {"paper_id": "a.pdf", "stance": "supports", "evidence": [{"page": 1, "excerpt": "alpha findings"}]},
        {"paper_id": "b.pdf", "stance": "contradicts", "evidence": []}
      ]
    }
  ]
}` + "\n```", nil
	}}

	e := NewEngine(twoPaperIndex(t, config.CompareRetrievalK), model)
	result, retrieved, err := e.Compare(context.Background(), "alpha", "demo", nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if result.Error != "" {
		t.Fatalf("unexpected parse error: %s", result.Error)
	}
	if len(result.Claims) != 1 || result.Claims[0].Claim != "Alpha works" {
		t.Errorf("claims = %+v", result.Claims)
	}
	if result.NumPapers != 2 {
		t.Errorf("num papers = %d; want 2", result.NumPapers)
	}
	if len(result.Sources) != 2 || result.Sources[0] != "a.pdf" || result.Sources[1] != "b.pdf" {
		t.Errorf("sources = %v", result.Sources)
	}
	if len(retrieved) != 3 {
		t.Errorf("retrieved = %d chunks; want 3", len(retrieved))
	}
}

// A model that ignores the JSON instruction and answers in prose must still
// produce a result object, with the raw text preserved.
func TestCompare_PlainProseResponse(t *testing.T) {
	model := &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		return "The papers broadly agree on the main point.", nil
	}}

	e := NewEngine(twoPaperIndex(t, config.CompareRetrievalK), model)
	result, _, err := e.Compare(context.Background(), "alpha", "demo", nil)
	if err != nil {
		t.Fatalf("Compare must not error on parse failure: %v", err)
	}

	if result.Error == "" {
		t.Error("expected parse error to be recorded")
	}
	if result.RawResponse != "The papers broadly agree on the main point." {
		t.Errorf("raw response = %q", result.RawResponse)
	}
	if len(result.Claims) != 0 {
		t.Errorf("claims should be empty, got %+v", result.Claims)
	}
}

func TestCompare_EmptyRetrievalShortCircuits(t *testing.T) {
	index := &mockIndex{
		searchFunc: func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
			return nil, nil
		},
	}
	model := &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", nil
	}}

	e := NewEngine(index, model)
	result, _, err := e.Compare(context.Background(), "alpha", "demo", nil)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if result.Message == "" {
		t.Error("expected explanatory message on empty retrieval")
	}
	if model.calls != 0 {
		t.Error("generation model called with nothing to compare")
	}
}

func TestCompare_RetrievalErrorIsFatal(t *testing.T) {
	index := &mockIndex{
		searchFunc: func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
			return nil, errors.New("index down")
		},
	}
	e := NewEngine(index, &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", nil
	}})
	if _, _, err := e.Compare(context.Background(), "alpha", "demo", nil); err == nil {
		t.Error("expected error when retrieval fails")
	}
}

func TestLitReview_SplitsParagraphsAndExtractsCitations(t *testing.T) {
	model := &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		return `{
  "title": "Literature Review: Alpha Methods",
  "outline": ["Methods", "Results"],
  "sections": [
    {
      "heading": "Methods",
      "content": "Both papers use gradient descent [a.pdf, p.3].\n\nOne extends it with momentum [b.pdf, p.7] and compares against [a.pdf, p.4]."
    }
  ]
}`, nil
	}}

	e := NewEngine(twoPaperIndex(t, config.LitReviewRetrievalK), model)
	result, _, err := e.LitReview(context.Background(), "Alpha Methods", "demo", nil)
	if err != nil {
		t.Fatalf("LitReview failed: %v", err)
	}

	if result.Title != "Literature Review: Alpha Methods" {
		t.Errorf("title = %q", result.Title)
	}
	if len(result.Outline) != 2 {
		t.Errorf("outline = %v", result.Outline)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("sections = %+v", result.Sections)
	}

	paragraphs := result.Sections[0].Paragraphs
	if len(paragraphs) != 2 {
		t.Fatalf("got %d paragraphs; want 2", len(paragraphs))
	}
	if len(paragraphs[0].Citations) != 1 || paragraphs[0].Citations[0].Paper != "a.pdf" || paragraphs[0].Citations[0].Page != 3 {
		t.Errorf("paragraph 0 citations = %+v", paragraphs[0].Citations)
	}
	if len(paragraphs[1].Citations) != 2 {
		t.Errorf("paragraph 1 citations = %+v", paragraphs[1].Citations)
	}
}

func TestLitReview_ParseFailureKeepsFallbackTitle(t *testing.T) {
	model := &mockLLM{invokeFunc: func(ctx context.Context, prompt string) (string, error) {
		return "I could not produce a review.", nil
	}}

	e := NewEngine(twoPaperIndex(t, config.LitReviewRetrievalK), model)
	result, _, err := e.LitReview(context.Background(), "Alpha", "demo", nil)
	if err != nil {
		t.Fatalf("LitReview must not error on parse failure: %v", err)
	}
	if result.Title != "Literature Review: Alpha" {
		t.Errorf("title = %q", result.Title)
	}
	if result.Error == "" {
		t.Error("expected parse error to be recorded")
	}
}

func TestParseFirstJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, false},
		{"markdown fenced", "```json\n{\"a\": 1}\n```", false},
		{"prose around", "sure: {\"a\": {\"b\": 2}} hope that helps", false},
		{"brace inside string", `{"a": "has } in it"}`, false},
		{"no object", "just words", true},
		{"unbalanced", `{"a": 1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out map[string]any
			err := parseFirstJSONObject(tt.input, &out)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseFirstJSONObject(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestExtractCitations(t *testing.T) {
	text := "See [paper one.pdf, p.12] and [other.pdf,p.3]; ignore [not a citation]."
	citations := extractCitations(text)

	if len(citations) != 2 {
		t.Fatalf("got %d citations; want 2: %+v", len(citations), citations)
	}
	if citations[0].Paper != "paper one.pdf" || citations[0].Page != 12 {
		t.Errorf("citation 0 = %+v", citations[0])
	}
	if citations[1].Paper != "other.pdf" || citations[1].Page != 3 {
		t.Errorf("citation 1 = %+v", citations[1])
	}
}
