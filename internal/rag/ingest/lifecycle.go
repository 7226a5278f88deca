package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/docModel"
)

// Lifecycle owns the document status machine. Every transition goes through
// here so a document can never skip from UPLOADED straight to INDEXED.
type Lifecycle struct {
	Documents docModel.DocumentStore
}

func (l *Lifecycle) BeginProcessing(ctx context.Context, documentId string) (docModel.Document, error) {
	doc, found := l.Documents.GetDocument(ctx, documentId)
	if !found {
		return docModel.Document{}, fmt.Errorf("document %s not found", documentId)
	}

	now := time.Now().UTC()
	doc.Status = docModel.StatusProcessing
	doc.ProcessingStartedAt = &now
	doc.ProcessingCompletedAt = nil
	doc.ErrorMessage = ""

	if err := l.Documents.SaveDocument(ctx, doc); err != nil {
		return docModel.Document{}, fmt.Errorf("saving document %s: %w", documentId, err)
	}
	return doc, nil
}

func (l *Lifecycle) Complete(ctx context.Context, doc docModel.Document, title, abstract string, pageCount int) error {
	now := time.Now().UTC()
	doc.Status = docModel.StatusIndexed
	doc.ProcessingCompletedAt = &now
	doc.Title = title
	doc.Abstract = abstract
	doc.PageCount = pageCount
	doc.ErrorMessage = ""

	if err := l.Documents.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving document %s: %w", doc.Id, err)
	}
	return nil
}

// Fail records the failure on the document record. It never returns an
// error itself: a broken status write must not mask the original failure.
func (l *Lifecycle) Fail(ctx context.Context, documentId string, cause error) {
	doc, found := l.Documents.GetDocument(ctx, documentId)
	if !found {
		logger.Error("Could not load document to mark failed", "documentId", documentId)
		return
	}

	now := time.Now().UTC()
	doc.Status = docModel.StatusFailed
	doc.ProcessingCompletedAt = &now
	if cause != nil {
		doc.ErrorMessage = cause.Error()
	}

	if err := l.Documents.SaveDocument(ctx, doc); err != nil {
		logger.Error("Could not persist failed status", "documentId", documentId, "error", err)
	}
}

// ResetForReingest puts an INDEXED or FAILED document back to UPLOADED so
// the pipeline can run it again from scratch.
func (l *Lifecycle) ResetForReingest(ctx context.Context, documentId string) (docModel.Document, error) {
	doc, found := l.Documents.GetDocument(ctx, documentId)
	if !found {
		return docModel.Document{}, fmt.Errorf("document %s not found", documentId)
	}

	doc.Status = docModel.StatusUploaded
	doc.ProcessingStartedAt = nil
	doc.ProcessingCompletedAt = nil
	doc.ErrorMessage = ""

	if err := l.Documents.SaveDocument(ctx, doc); err != nil {
		return docModel.Document{}, fmt.Errorf("saving document %s: %w", documentId, err)
	}
	return doc, nil
}
