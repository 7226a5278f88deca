package grounding

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Grounding Engine ")

// Engine answers questions strictly from retrieved context. It never lets
// the model free-associate: an empty retrieval set short-circuits into the
// fixed refusal answer without a generation call.
type Engine struct {
	Index vectorDB.SessionIndex
	LLM   llm.Provider
}

func NewEngine(index vectorDB.SessionIndex, provider llm.Provider) *Engine {
	return &Engine{Index: index, LLM: provider}
}

func (e *Engine) Answer(ctx context.Context, question string, session string, sources []string, k int) (queryModel.GroundedAnswer, error) {
	if k <= 0 {
		k = config.DefaultRetrievalK
	}

	docChunks, err := e.Index.Search(ctx, session, question, k, commonModels.SearchFilter{
		Sources:     sources,
		ExcludeType: commonModels.ChunkTypeHighlight,
	})
	if err != nil {
		return queryModel.GroundedAnswer{}, queryModel.NewQueryError(queryModel.ErrorKindRetrieval, fmt.Errorf("retrieving document chunks: %w", err))
	}

	return e.generate(ctx, question, session, docChunks)
}

// PaperOverview handles the "what is this paper about" route: pull the
// abstract section plus body chunks for one source and answer over that
// pre-built set instead of a plain similarity search.
func (e *Engine) PaperOverview(ctx context.Context, question string, session string, source string) (queryModel.GroundedAnswer, error) {
	abstractChunks, err := e.Index.Search(ctx, session, "abstract", config.OverviewAbstractK, commonModels.SearchFilter{
		Sources:     []string{source},
		Section:     commonModels.SectionAbstract,
		ExcludeType: commonModels.ChunkTypeHighlight,
	})
	if err != nil {
		return queryModel.GroundedAnswer{}, queryModel.NewQueryError(queryModel.ErrorKindRetrieval, fmt.Errorf("retrieving abstract chunks: %w", err))
	}

	bodyChunks, err := e.Index.Search(ctx, session, question, config.OverviewBodyK, commonModels.SearchFilter{
		Sources:     []string{source},
		Section:     commonModels.SectionBody,
		ExcludeType: commonModels.ChunkTypeHighlight,
	})
	if err != nil {
		return queryModel.GroundedAnswer{}, queryModel.NewQueryError(queryModel.ErrorKindRetrieval, fmt.Errorf("retrieving body chunks: %w", err))
	}

	return e.generate(ctx, question, session, append(abstractChunks, bodyChunks...))
}

// generate is the shared back half: annotation retrieval, refusal check,
// prompt assembly, model call and citation grouping.
func (e *Engine) generate(ctx context.Context, question string, session string, docChunks []commonModels.ScoredChunk) (queryModel.GroundedAnswer, error) {
	// Annotations are best-effort: a broken highlight search must not take
	// down the whole question.
	priorityChunks, err := e.Index.Search(ctx, session, question, config.HighlightRetrievalK, commonModels.SearchFilter{
		Type: commonModels.ChunkTypeHighlight,
	})
	if err != nil {
		logger.Warn("Highlight retrieval failed, continuing without annotations", "error", err)
		priorityChunks = nil
	}

	if len(priorityChunks) == 0 && len(docChunks) == 0 {
		return queryModel.GroundedAnswer{
			Answer:    config.RefusalAnswer,
			Citations: []queryModel.Citation{},
		}, nil
	}

	var contextParts []string
	for _, c := range priorityChunks {
		contextParts = append(contextParts, fmt.Sprintf("[USER ANNOTATION - Page %d]: %s", c.Page, c.Text))
	}
	for _, c := range docChunks {
		contextParts = append(contextParts, c.Text)
	}

	prompt := buildPrompt(question, strings.Join(contextParts, "\n\n"))

	answer, err := e.LLM.Invoke(ctx, prompt)
	if err != nil {
		return queryModel.GroundedAnswer{}, queryModel.NewQueryError(queryModel.ErrorKindGeneration, fmt.Errorf("generation call failed: %w", err))
	}

	return queryModel.GroundedAnswer{
		Answer:    strings.TrimSpace(answer),
		Citations: BuildCitations(docChunks),
		Retrieved: RetrievedChunks(docChunks),
	}, nil
}

func buildPrompt(question string, context string) string {
	return fmt.Sprintf(`You are a scientific assistant.

Answer the question using ONLY the context below.
Sections marked as [USER ANNOTATION] are notes the reader made on the paper;
give them special weight when they are relevant.
If the answer is not explicitly present in the context,
respond exactly with:

"%s"

Context:
%s

Question:
%s`, config.RefusalAnswer, context, question)
}

// BuildCitations groups document chunks by (source, page), counting how many
// chunks shared each pair. Entries come out in first-occurrence order.
func BuildCitations(chunks []commonModels.ScoredChunk) []queryModel.Citation {
	citations := []queryModel.Citation{}
	index := make(map[string]int)

	for _, c := range chunks {
		key := fmt.Sprintf("%s\x00%d", c.Source, c.Page)
		if i, seen := index[key]; seen {
			citations[i].Count++
			continue
		}
		index[key] = len(citations)
		citations = append(citations, queryModel.Citation{
			Source: c.Source,
			Page:   c.Page,
			Count:  1,
		})
	}
	return citations
}

// RetrievedChunks converts the retrieval set to its run-log form, with the
// chunk text cut down to a short preview.
func RetrievedChunks(chunks []commonModels.ScoredChunk) []queryModel.RetrievedChunk {
	var out []queryModel.RetrievedChunk
	for _, c := range chunks {
		preview := c.Text
		if len(preview) > config.TextPreviewLength {
			preview = preview[:config.TextPreviewLength]
		}
		out = append(out, queryModel.RetrievedChunk{
			Doc:         c.Source,
			Page:        c.Page,
			ChunkId:     c.Id,
			Score:       c.Score,
			TextPreview: preview,
		})
	}
	return out
}
