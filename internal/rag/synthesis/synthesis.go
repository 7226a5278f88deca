package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/internal/rag/grounding"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
)

// Engine produces cross-document results: claim comparison and structured
// literature reviews. Both modes pull a wider retrieval set than plain QA
// and ask the model for JSON; a response that fails to parse degrades into
// a payload carrying the raw text, it never errors the request.
type Engine struct {
	Index vectorDB.SessionIndex
	LLM   llm.Provider
}

func NewEngine(index vectorDB.SessionIndex, provider llm.Provider) *Engine {
	return &Engine{Index: index, LLM: provider}
}

func (e *Engine) Compare(ctx context.Context, question string, session string, sources []string) (*queryModel.CompareResult, []queryModel.RetrievedChunk, error) {
	chunks, err := e.retrieve(ctx, question, session, sources, config.CompareRetrievalK)
	if err != nil {
		return nil, nil, err
	}

	if len(chunks) == 0 {
		return &queryModel.CompareResult{
			Topic:   question,
			Claims:  []queryModel.Claim{},
			Message: "No documents found to compare",
		}, nil, nil
	}

	grouped := groupBySource(chunks)
	contextBlock := renderContext(grouped, "Document")

	response, err := e.LLM.Invoke(ctx, comparePrompt(question, contextBlock))
	if err != nil {
		return nil, nil, queryModel.NewQueryError(queryModel.ErrorKindGeneration, fmt.Errorf("generation call failed: %w", err))
	}

	result := &queryModel.CompareResult{
		Topic:     question,
		Claims:    []queryModel.Claim{},
		NumPapers: len(grouped.order),
		Sources:   grouped.order,
	}

	var parsed struct {
		Claims []queryModel.Claim `json:"claims"`
	}
	if err := parseFirstJSONObject(response, &parsed); err != nil {
		result.RawResponse = response
		result.Error = fmt.Sprintf("Failed to parse JSON: %v", err)
	} else if parsed.Claims != nil {
		result.Claims = parsed.Claims
	}

	return result, grounding.RetrievedChunks(chunks), nil
}

func (e *Engine) LitReview(ctx context.Context, topic string, session string, sources []string) (*queryModel.LitReviewResult, []queryModel.RetrievedChunk, error) {
	chunks, err := e.retrieve(ctx, topic, session, sources, config.LitReviewRetrievalK)
	if err != nil {
		return nil, nil, err
	}

	fallbackTitle := fmt.Sprintf("Literature Review: %s", topic)

	if len(chunks) == 0 {
		return &queryModel.LitReviewResult{
			Title:    fallbackTitle,
			Outline:  []string{},
			Sections: []queryModel.ReviewSection{},
			Message:  "No documents found for review",
		}, nil, nil
	}

	grouped := groupBySource(chunks)
	contextBlock := renderContext(grouped, "Paper")

	response, err := e.LLM.Invoke(ctx, litReviewPrompt(topic, contextBlock))
	if err != nil {
		return nil, nil, queryModel.NewQueryError(queryModel.ErrorKindGeneration, fmt.Errorf("generation call failed: %w", err))
	}

	result := &queryModel.LitReviewResult{
		Title:     fallbackTitle,
		Outline:   []string{},
		Sections:  []queryModel.ReviewSection{},
		NumPapers: len(grouped.order),
		Sources:   grouped.order,
	}

	var parsed struct {
		Title    string   `json:"title"`
		Outline  []string `json:"outline"`
		Sections []struct {
			Heading string `json:"heading"`
			Content string `json:"content"`
		} `json:"sections"`
	}
	if err := parseFirstJSONObject(response, &parsed); err != nil {
		result.RawResponse = response
		result.Error = fmt.Sprintf("Failed to parse JSON: %v", err)
		return result, grounding.RetrievedChunks(chunks), nil
	}

	if parsed.Title != "" {
		result.Title = parsed.Title
	}
	if parsed.Outline != nil {
		result.Outline = parsed.Outline
	}
	for _, section := range parsed.Sections {
		result.Sections = append(result.Sections, queryModel.ReviewSection{
			Heading:    section.Heading,
			Paragraphs: splitParagraphs(section.Content),
		})
	}

	return result, grounding.RetrievedChunks(chunks), nil
}

func (e *Engine) retrieve(ctx context.Context, query string, session string, sources []string, k int) ([]commonModels.ScoredChunk, error) {
	chunks, err := e.Index.Search(ctx, session, query, k, commonModels.SearchFilter{
		Sources:     sources,
		ExcludeType: commonModels.ChunkTypeHighlight,
	})
	if err != nil {
		return nil, queryModel.NewQueryError(queryModel.ErrorKindRetrieval, fmt.Errorf("retrieving chunks: %w", err))
	}
	return chunks, nil
}

// splitParagraphs breaks section content on blank lines and pulls inline
// [paper, p.N] citations out of each paragraph.
func splitParagraphs(content string) []queryModel.Paragraph {
	paragraphs := []queryModel.Paragraph{}
	for _, part := range strings.Split(content, "\n\n") {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, queryModel.Paragraph{
			Text:      text,
			Citations: extractCitations(text),
		})
	}
	return paragraphs
}

func comparePrompt(question string, context string) string {
	return fmt.Sprintf(`You are a scientific research analyst comparing multiple papers.

Analyze the documents below and identify key claims related to the topic: "%s"

For each claim, identify:
1. What the claim states
2. Which papers support, contradict, or remain neutral on this claim
3. Specific evidence (page numbers and excerpts) from each paper

Documents:
%s

Output your analysis in the following JSON format:
{
  "claims": [
    {
      "claim": "Clear statement of the claim",
      "papers": [
        {
          "paper_id": "filename.pdf",
          "stance": "supports|contradicts|neutral",
          "evidence": [
            {
              "page": 5,
              "excerpt": "Relevant quote from the paper"
            }
          ]
        }
      ]
    }
  ]
}

Focus on factual claims and concrete evidence. Include 3-5 major claims.`, question, context)
}

func litReviewPrompt(topic string, context string) string {
	return fmt.Sprintf(`You are a scientific writer creating a literature review.

Write a structured literature review on: "%s"

Use the documents below as sources. Your review should:
1. Synthesize findings across papers (don't just summarize each paper separately)
2. Organize content thematically (e.g., Methods, Results, Implications)
3. Include proper citations in the format [PaperName, p.X]
4. Be comprehensive but concise (3-5 sections, 2-3 paragraphs each)

Documents:
%s

Output your review in the following JSON format:
{
  "title": "Literature Review: [Topic]",
  "outline": ["Section 1 heading", "Section 2 heading", ...],
  "sections": [
    {
      "heading": "Section 1 heading",
      "content": "Full text of section with citations like [filename.pdf, p.5]. Multiple paragraphs OK."
    }
  ]
}

Focus on synthesis, not just summary. Connect ideas across papers.`, topic, context)
}
