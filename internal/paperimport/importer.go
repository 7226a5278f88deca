package paperimport

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

// Importer pulls an arXiv paper into a session: metadata fetch, PDF
// download into the upload directory, document registration, then the
// normal background ingestion path.
type Importer struct {
	Arxiv     *ArxivClient
	Documents docModel.DocumentStore
	Sessions  docModel.SessionStore
	SaveDir   string

	// Enqueue hands the job to the worker pool. Injected so the importer
	// does not know about channels or dispatch counters.
	Enqueue func(job jobModel.IngestJob)
}

type ImportResult struct {
	Success    bool   `json:"success"`
	DocumentId string `json:"document_id,omitempty"`
	ArxivId    string `json:"arxiv_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (imp *Importer) ImportPaper(ctx context.Context, arxivId string, sessionName string, downloadPdf bool, traceId string) (ImportResult, error) {
	paper, err := imp.Arxiv.FetchMetadata(ctx, arxivId)
	if err != nil {
		return ImportResult{}, err
	}

	if _, found := imp.Sessions.GetSession(ctx, sessionName); !found {
		session := docModel.Session{
			Id:        utils.GetNewUUID(),
			Name:      sessionName,
			CreatedAt: time.Now().UTC(),
		}
		if err := imp.Sessions.SaveSession(ctx, session); err != nil {
			return ImportResult{}, fmt.Errorf("creating session: %w", err)
		}
	}

	if !downloadPdf {
		return ImportResult{
			Success: true,
			ArxivId: arxivId,
			Title:   paper.Title,
			Status:  "METADATA_ONLY",
			Message: "Metadata saved (PDF not downloaded)",
		}, nil
	}

	path, err := imp.Arxiv.DownloadPDF(ctx, paper, imp.SaveDir)
	if err != nil {
		return ImportResult{}, err
	}

	doc := docModel.Document{
		Id:          utils.GetNewUUID(),
		Filename:    filepath.Base(path),
		SessionName: sessionName,
		Status:      docModel.StatusUploaded,
		Title:       paper.Title,
		Abstract:    paper.Abstract,
		StoragePath: path,
		UploadedAt:  time.Now().UTC(),
	}
	if err := imp.Documents.SaveDocument(ctx, doc); err != nil {
		return ImportResult{}, fmt.Errorf("registering document: %w", err)
	}

	imp.Enqueue(jobModel.IngestJob{
		DocumentId: doc.Id,
		Path:       path,
		TraceId:    traceId,
		EnqueuedAt: time.Now().UTC(),
	})

	return ImportResult{
		Success:    true,
		DocumentId: doc.Id,
		ArxivId:    arxivId,
		Title:      paper.Title,
		Status:     string(docModel.StatusUploaded),
		Message:    "Paper import initiated",
	}, nil
}
