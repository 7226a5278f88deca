package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion ")

// Pipeline runs the whole ingestion for one document: load pages, pull the
// title/abstract heuristics off page 0, chunk, embed and index. It is invoked
// from the worker pool, never from a request handler.
type Pipeline struct {
	Loader    PageLoader
	Index     vectorDB.SessionIndex
	Lifecycle *Lifecycle
}

func NewPipeline(loader PageLoader, index vectorDB.SessionIndex, documents docModel.DocumentStore) *Pipeline {
	return &Pipeline{
		Loader:    loader,
		Index:     index,
		Lifecycle: &Lifecycle{Documents: documents},
	}
}

// Run drives one ingest job to a terminal status. Whatever happens the
// document ends up INDEXED or FAILED; a panic inside the extraction stack is
// converted into a FAILED document instead of killing the worker.
func (p *Pipeline) Run(ctx context.Context, job jobModel.IngestJob) {
	//jobs run concurrently, so the trace id rides on a local logger
	log := logger.With("traceId", job.TraceId)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic during ingestion", "documentId", job.DocumentId, "panic", r)
			p.Lifecycle.Fail(ctx, job.DocumentId, fmt.Errorf("ingestion panic: %v", r))
		}
	}()

	if job.IsReingest {
		if _, err := p.Lifecycle.ResetForReingest(ctx, job.DocumentId); err != nil {
			log.Error("Could not reset document for reingest", "documentId", job.DocumentId, "error", err)
			p.Lifecycle.Fail(ctx, job.DocumentId, err)
			return
		}
	}

	doc, err := p.Lifecycle.BeginProcessing(ctx, job.DocumentId)
	if err != nil {
		log.Error("Could not begin processing", "documentId", job.DocumentId, "error", err)
		p.Lifecycle.Fail(ctx, job.DocumentId, err)
		return
	}

	log.Debug("Processing document", "filename", doc.Filename, "path", job.Path)

	pages, err := p.Loader.LoadPages(job.Path)
	if err != nil {
		log.Error("Error extracting document pages", "error", err)
		p.Lifecycle.Fail(ctx, job.DocumentId, fmt.Errorf("extracting pages: %w", err))
		return
	}
	if len(pages) == 0 {
		p.Lifecycle.Fail(ctx, job.DocumentId, errors.New("document produced no pages"))
		return
	}

	title, abstract := ExtractTitleAndAbstract(pages[0])

	chunks := PrepareChunks(pages, doc.Filename)
	log.Debug("Processing document", "Number of raw pages: ", len(pages), "Number of chunks: ", len(chunks))
	if len(chunks) == 0 {
		p.Lifecycle.Fail(ctx, job.DocumentId, errors.New("document produced no indexable text"))
		return
	}

	if job.IsReingest {
		// Drop the previous generation of chunks so the session never holds
		// two copies of the same paper.
		err = p.Index.Delete(ctx, doc.SessionName, commonModels.DeleteFilter{Source: doc.Filename})
		if err != nil {
			log.Error("Error clearing stale chunks", "error", err)
			p.Lifecycle.Fail(ctx, job.DocumentId, fmt.Errorf("clearing stale chunks: %w", err))
			return
		}
	}

	if err = p.Index.Add(ctx, doc.SessionName, chunks); err != nil {
		log.Error("Error indexing chunks", "error", err)
		p.Lifecycle.Fail(ctx, job.DocumentId, fmt.Errorf("indexing chunks: %w", err))
		return
	}

	if err = p.Lifecycle.Complete(ctx, doc, title, abstract, len(pages)); err != nil {
		log.Error("Error finalizing document", "error", err)
		p.Lifecycle.Fail(ctx, job.DocumentId, err)
		return
	}

	log.Info("Document indexed", "documentId", doc.Id, "pages", len(pages), "chunks", len(chunks))
}
