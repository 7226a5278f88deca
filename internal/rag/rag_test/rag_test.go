package rag_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag"
)

type fixture struct {
	svc       rag.Service
	index     *MockSessionIndex
	llm       *MockLLM
	loader    *MockLoader
	documents *store.InMemoryDocumentStore
	sessions  *store.InMemorySessionStore
	runLogs   *store.InMemoryRunLogStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		index:     &MockSessionIndex{},
		llm:       &MockLLM{},
		loader:    &MockLoader{},
		documents: store.InitInMemoryDocumentStore(),
		sessions:  store.InitInMemorySessionStore(),
		runLogs:   store.InitInMemoryRunLogStore(),
	}
	f.svc = rag.NewService(f.index, f.llm, f.loader, f.documents, f.sessions, metrics.NewRecorder(f.runLogs))

	ctx := context.Background()
	if err := f.sessions.SaveSession(ctx, docModel.Session{Id: "s-1", Name: "demo"}); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	if err := f.documents.SaveDocument(ctx, docModel.Document{
		Id:          "doc-1",
		Filename:    "paper.pdf",
		SessionName: "demo",
		Status:      docModel.StatusIndexed,
		Title:       "Foo",
		PageCount:   12,
	}); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
	return f
}

func (f *fixture) lastRunLog(t *testing.T) queryModel.RunLog {
	t.Helper()
	logs, err := f.runLogs.ListRunLogsSince(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("listing run logs: %v", err)
	}
	if len(logs) == 0 {
		t.Fatal("no run log recorded")
	}
	return logs[len(logs)-1]
}

func TestAsk_TitleShortcutSkipsIndex(t *testing.T) {
	f := newFixture(t)
	f.index.OnSearch = func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
		t.Error("index searched on a metadata shortcut")
		return nil, nil
	}

	result, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "What is the title?",
		Session:  "demo",
		Sources:  []string{"paper.pdf"},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if result.Answer != "Foo" {
		t.Errorf("answer = %q; want Foo", result.Answer)
	}
	if len(result.Citations) != 0 {
		t.Errorf("citations = %+v; want empty", result.Citations)
	}

	log := f.lastRunLog(t)
	if log.Mode != queryModel.ModeQA || log.ErrorType != "" {
		t.Errorf("run log = %+v", log)
	}
}

func TestAsk_PageCountShortcut(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "How many pages is it?",
		Session:  "demo",
		Sources:  []string{"paper.pdf"},
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if result.Answer != "12" {
		t.Errorf("answer = %q; want 12", result.Answer)
	}
}

func TestAsk_ShortcutMissingDocumentIsRequestError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "What is the title?",
		Session:  "demo",
		Sources:  []string{"ghost.pdf"},
	})
	if err == nil {
		t.Fatal("expected error for missing document")
	}

	var qe *queryModel.QueryError
	if !errors.As(err, &qe) || qe.Kind != queryModel.ErrorKindRequest {
		t.Errorf("error = %v; want request error", err)
	}
	if log := f.lastRunLog(t); log.ErrorType != queryModel.ErrorKindRequest {
		t.Errorf("run log error type = %q", log.ErrorType)
	}
}

func TestAsk_GroundedQAFlow(t *testing.T) {
	f := newFixture(t)
	f.index.OnSearch = func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
		if filter.Type == commonModels.ChunkTypeHighlight {
			return nil, nil
		}
		if session != "demo" || k != 5 {
			t.Errorf("search(session=%q, k=%d)", session, k)
		}
		return []commonModels.ScoredChunk{
			{Chunk: commonModels.Chunk{Id: "c1", Text: "relevant text", Source: "paper.pdf", Page: 3}, Score: 0.9},
			{Chunk: commonModels.Chunk{Id: "c2", Text: "more text", Source: "paper.pdf", Page: 3}, Score: 0.8},
		}, nil
	}
	f.llm.OnInvoke = func(ctx context.Context, prompt string) (string, error) {
		return "a grounded answer", nil
	}

	result, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "What loss function do they use?",
		Session:  "demo",
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if result.Answer != "a grounded answer" {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Citations) != 1 || result.Citations[0].Count != 2 {
		t.Errorf("citations = %+v", result.Citations)
	}

	log := f.lastRunLog(t)
	if len(log.RetrievedChunks) != 2 {
		t.Errorf("run log retrieved %d chunks; want 2", len(log.RetrievedChunks))
	}
	if log.RetrievedChunks[0].ChunkId != "c1" || log.RetrievedChunks[0].Doc != "paper.pdf" {
		t.Errorf("run log chunk = %+v", log.RetrievedChunks[0])
	}
}

func TestAsk_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "anything",
		Session:  "nope",
	})

	var qe *queryModel.QueryError
	if !errors.As(err, &qe) || qe.Kind != queryModel.ErrorKindRequest {
		t.Errorf("error = %v; want request error", err)
	}
}

func TestAsk_MissingQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), queryModel.AskRequest{Session: "demo"})

	var qe *queryModel.QueryError
	if !errors.As(err, &qe) || qe.Kind != queryModel.ErrorKindRequest {
		t.Errorf("error = %v; want request error", err)
	}
}

func TestAsk_CompareModeDispatch(t *testing.T) {
	f := newFixture(t)
	f.index.OnSearch = func(ctx context.Context, session, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
		return []commonModels.ScoredChunk{
			{Chunk: commonModels.Chunk{Id: "c1", Text: "alpha", Source: "a.pdf", Page: 1}, Score: 0.9},
		}, nil
	}
	f.llm.OnInvoke = func(ctx context.Context, prompt string) (string, error) {
		return `{"claims": [{"claim": "it works", "papers": []}]}`, nil
	}

	result, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "compare these",
		Session:  "demo",
		Mode:     queryModel.ModeCompare,
	})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if result.Mode != queryModel.ModeCompare || result.Compare == nil {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Compare.Claims) != 1 {
		t.Errorf("claims = %+v", result.Compare.Claims)
	}
	if log := f.lastRunLog(t); log.Mode != queryModel.ModeCompare {
		t.Errorf("run log mode = %q", log.Mode)
	}
}

func TestAsk_UnknownMode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), queryModel.AskRequest{
		Question: "anything",
		Session:  "demo",
		Mode:     "poetry",
	})

	var qe *queryModel.QueryError
	if !errors.As(err, &qe) || qe.Kind != queryModel.ErrorKindRequest {
		t.Errorf("error = %v; want request error", err)
	}
}

func TestIngestDocument_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.documents.SaveDocument(ctx, docModel.Document{
		Id:          "doc-2",
		Filename:    "new.pdf",
		SessionName: "demo",
		Status:      docModel.StatusUploaded,
	}); err != nil {
		t.Fatalf("seeding document: %v", err)
	}

	f.loader.OnLoadPages = func(path string) ([]string, error) {
		return []string{"The New Paper\n\nAbstract: fresh results.", "Body."}, nil
	}
	var addedChunks int
	f.index.OnAdd = func(ctx context.Context, session string, chunks []commonModels.Chunk) error {
		addedChunks += len(chunks)
		return nil
	}

	f.svc.IngestDocument(ctx, jobModel.IngestJob{DocumentId: "doc-2", Path: "/tmp/new.pdf"})

	doc, _ := f.documents.GetDocument(ctx, "doc-2")
	if doc.Status != docModel.StatusIndexed {
		t.Fatalf("status = %s (error: %s)", doc.Status, doc.ErrorMessage)
	}
	if doc.Title != "The New Paper" || doc.PageCount != 2 {
		t.Errorf("doc metadata = %+v", doc)
	}
	if addedChunks == 0 {
		t.Error("no chunks written to the index")
	}
}
