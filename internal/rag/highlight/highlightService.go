package highlight

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Highlight Service ")

// Service manages user annotations and their embeddings. The annotation
// record is the source of truth; its index entry is best-effort, so a dead
// embedder leaves the highlight saved but not retrievable during QA.
type Service struct {
	Index      vectorDB.SessionIndex
	Documents  docModel.DocumentStore
	Highlights docModel.HighlightStore
}

func NewService(index vectorDB.SessionIndex, documents docModel.DocumentStore, highlights docModel.HighlightStore) *Service {
	return &Service{Index: index, Documents: documents, Highlights: highlights}
}

func (s *Service) Create(ctx context.Context, h commonModels.Highlight) (commonModels.Highlight, error) {
	doc, found := s.Documents.GetDocument(ctx, h.DocumentId)
	if !found {
		return commonModels.Highlight{}, fmt.Errorf("document %s not found", h.DocumentId)
	}

	if h.Id == "" {
		h.Id = utils.GetNewUUID()
	}
	h.CreatedAt = time.Now().UTC()
	h.UpdatedAt = h.CreatedAt

	if err := s.Highlights.SaveHighlight(ctx, h); err != nil {
		return commonModels.Highlight{}, fmt.Errorf("saving highlight: %w", err)
	}

	if embeddingId, err := s.embed(ctx, h, doc); err != nil {
		logger.Error("Failed to embed highlight", "highlightId", h.Id, "error", err)
	} else {
		h.EmbeddingId = embeddingId
		if err := s.Highlights.SaveHighlight(ctx, h); err != nil {
			logger.Error("Failed to record embedding id", "highlightId", h.Id, "error", err)
		}
	}

	return h, nil
}

func (s *Service) Update(ctx context.Context, h commonModels.Highlight) (commonModels.Highlight, error) {
	existing, found := s.Highlights.GetHighlight(ctx, h.Id)
	if !found {
		return commonModels.Highlight{}, fmt.Errorf("highlight %s not found", h.Id)
	}

	doc, foundDoc := s.Documents.GetDocument(ctx, existing.DocumentId)
	if !foundDoc {
		return commonModels.Highlight{}, fmt.Errorf("document %s not found", existing.DocumentId)
	}

	existing.Text = h.Text
	existing.Note = h.Note
	existing.Tags = h.Tags
	existing.UpdatedAt = time.Now().UTC()

	if err := s.Highlights.SaveHighlight(ctx, existing); err != nil {
		return commonModels.Highlight{}, fmt.Errorf("saving highlight: %w", err)
	}

	// Re-embed with the new content. The stale vector goes first so a query
	// in between sees at most a missing annotation, never a duplicate.
	if existing.EmbeddingId != "" {
		if err := s.Index.Delete(ctx, doc.SessionName, commonModels.DeleteFilter{Ids: []string{existing.EmbeddingId}}); err != nil {
			logger.Error("Failed to drop stale highlight embedding", "highlightId", existing.Id, "error", err)
		}
	}
	if embeddingId, err := s.embed(ctx, existing, doc); err != nil {
		logger.Error("Failed to re-embed highlight", "highlightId", existing.Id, "error", err)
	} else {
		existing.EmbeddingId = embeddingId
		if err := s.Highlights.SaveHighlight(ctx, existing); err != nil {
			logger.Error("Failed to record embedding id", "highlightId", existing.Id, "error", err)
		}
	}

	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	h, found := s.Highlights.GetHighlight(ctx, id)
	if !found {
		return fmt.Errorf("highlight %s not found", id)
	}

	if h.EmbeddingId != "" {
		if doc, foundDoc := s.Documents.GetDocument(ctx, h.DocumentId); foundDoc {
			if err := s.Index.Delete(ctx, doc.SessionName, commonModels.DeleteFilter{Ids: []string{h.EmbeddingId}}); err != nil {
				logger.Error("Failed to delete highlight embedding", "highlightId", id, "error", err)
			}
		}
	}

	return s.Highlights.DeleteHighlight(ctx, id)
}

func (s *Service) List(ctx context.Context, documentId string) ([]commonModels.Highlight, error) {
	return s.Highlights.ListHighlights(ctx, documentId)
}

func (s *Service) embed(ctx context.Context, h commonModels.Highlight, doc docModel.Document) (string, error) {
	content := h.Text
	if h.Note != "" {
		content += fmt.Sprintf("\n\n[USER NOTE]: %s", h.Note)
	}

	// Point ids must be UUIDs, so the chunk gets its own id and the
	// highlight record remembers it for later delete/re-embed.
	embeddingId := utils.GetNewUUID()
	err := s.Index.Add(ctx, doc.SessionName, []commonModels.Chunk{{
		Id:      embeddingId,
		Text:    content,
		Source:  doc.Filename,
		Page:    h.Page,
		Section: commonModels.SectionBody,
		Type:    commonModels.ChunkTypeHighlight,
	}})
	if err != nil {
		return "", err
	}
	return embeddingId, nil
}
