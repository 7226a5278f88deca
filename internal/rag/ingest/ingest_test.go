package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

// --- Mocks ---

type mockLoader struct {
	loadFunc func(path string) ([]string, error)
}

func (m *mockLoader) LoadPages(path string) ([]string, error) {
	return m.loadFunc(path)
}

type mockIndex struct {
	addFunc    func(ctx context.Context, session string, chunks []commonModels.Chunk) error
	deleteFunc func(ctx context.Context, session string, filter commonModels.DeleteFilter) error
}

func (m *mockIndex) Add(ctx context.Context, session string, chunks []commonModels.Chunk) error {
	if m.addFunc != nil {
		return m.addFunc(ctx, session, chunks)
	}
	return nil
}
func (m *mockIndex) Search(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
	return nil, nil
}
func (m *mockIndex) Delete(ctx context.Context, session string, filter commonModels.DeleteFilter) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, session, filter)
	}
	return nil
}
func (m *mockIndex) DropSession(ctx context.Context, session string) error { return nil }

func seedDocument(t *testing.T, docs docModel.DocumentStore, doc docModel.Document) {
	t.Helper()
	if err := docs.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("seeding document: %v", err)
	}
}

// --- Unit Tests ---

func TestSplitTextIntoChunks(t *testing.T) {
	text := "This is a long sentence. This is another sentence that will be split."
	limit := 30
	overlap := 5

	chunks := splitTextIntoChunks(text, limit, overlap)

	if len(chunks) < 2 {
		t.Errorf("Expected multiple chunks, got %d", len(chunks))
	}

	// The tail of each chunk should reappear at the head of the next one
	lastCharsOfFirst := chunks[0][len(chunks[0])-overlap:]
	if !strings.Contains(chunks[1], lastCharsOfFirst) {
		t.Errorf("No overlap carried over: %q vs %q", lastCharsOfFirst, chunks[1])
	}
}

func TestSplitTextIntoChunks_Small(t *testing.T) {
	chunks := splitTextIntoChunks("short", 1000, 200)
	if len(chunks) != 1 || chunks[0] != "short" {
		t.Errorf("Expected single pass-through chunk, got %v", chunks)
	}
}

func TestSplitTextIntoChunks_NoSeparator(t *testing.T) {
	// No whitespace anywhere: the per-rune fallback still has to split
	text := strings.Repeat("x", 100)
	chunks := splitTextIntoChunks(text, 30, 5)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	var rejoined strings.Builder
	for _, c := range chunks {
		if len(c) > 30 {
			t.Errorf("Chunk of %d bytes exceeds the limit", len(c))
		}
		rejoined.WriteString(c)
	}
	if !strings.Contains(rejoined.String(), text[:30]) {
		t.Error("Content lost in the fallback split")
	}
}

func TestSplitTextIntoChunks_MultibyteOverlap(t *testing.T) {
	// Greek text, 2 bytes per rune: a byte-offset overlap cut would land
	// mid-character
	sentence := strings.Repeat("σ", 20) + ". "
	text := strings.Repeat(sentence, 10)

	chunks := splitTextIntoChunks(text, 50, 7)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("Chunk %d carries invalid UTF-8 at its boundary: %q", i, c)
		}
	}
}

func TestPrepareChunks(t *testing.T) {
	pages := []string{
		"Title line\nAbstract: the abstract.",
		"Body of the paper.",
		"   ", // whitespace-only pages produce nothing
	}

	chunks := PrepareChunks(pages, "paper.pdf")

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Section != commonModels.SectionAbstract || chunks[0].Page != 0 {
		t.Errorf("Page 0 chunk mismatch: %+v", chunks[0])
	}
	if chunks[1].Section != commonModels.SectionBody || chunks[1].Page != 1 {
		t.Errorf("Page 1 chunk mismatch: %+v", chunks[1])
	}
	for _, c := range chunks {
		if c.Id == "" || c.Source != "paper.pdf" || c.Type != commonModels.ChunkTypeDocument {
			t.Errorf("Chunk metadata mismatch: %+v", c)
		}
	}
}

func TestExtractTitleAndAbstract(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantTitle    string
		wantAbstract string
	}{
		{
			name:         "title and abstract",
			text:         "Deep Learning for Cats\nA. Author\nSome University\n\nAbstract: We study cats.\nThey are fluffy.\n\nIntroduction follows.",
			wantTitle:    "Deep Learning for Cats A. Author Some University",
			wantAbstract: "We study cats.\nThey are fluffy.",
		},
		{
			name:         "no abstract token",
			text:         "Just a title",
			wantTitle:    "Just a title",
			wantAbstract: "",
		},
		{
			name:         "empty page",
			text:         "",
			wantTitle:    "",
			wantAbstract: "",
		},
		{
			name:         "case insensitive token",
			text:         "T\nABSTRACT\nfindings here",
			wantTitle:    "T ABSTRACT findings here",
			wantAbstract: "findings here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, abstract := ExtractTitleAndAbstract(tt.text)
			if title != tt.wantTitle {
				t.Errorf("title = %q; want %q", title, tt.wantTitle)
			}
			if abstract != tt.wantAbstract {
				t.Errorf("abstract = %q; want %q", abstract, tt.wantAbstract)
			}
		})
	}
}

func TestPipelineRun_Success(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	seedDocument(t, docs, docModel.Document{
		Id:          "doc-1",
		Filename:    "paper.pdf",
		SessionName: "demo",
		Status:      docModel.StatusUploaded,
	})

	var indexed []commonModels.Chunk
	var indexedSession string
	index := &mockIndex{
		addFunc: func(ctx context.Context, session string, chunks []commonModels.Chunk) error {
			indexedSession = session
			indexed = chunks
			return nil
		},
	}
	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		return []string{
			"A Study of Things\n\nAbstract: X\n\nIntroduction starts here.",
			"Middle page content.",
			"Final page content.",
		}, nil
	}}

	p := NewPipeline(loader, index, docs)
	p.Run(ctx, jobModel.IngestJob{DocumentId: "doc-1", Path: "/tmp/paper.pdf"})

	doc, found := docs.GetDocument(ctx, "doc-1")
	if !found {
		t.Fatal("document vanished")
	}
	if doc.Status != docModel.StatusIndexed {
		t.Fatalf("status = %s; want INDEXED (error: %s)", doc.Status, doc.ErrorMessage)
	}
	if doc.PageCount != 3 {
		t.Errorf("page count = %d; want 3", doc.PageCount)
	}
	if doc.Title != "A Study of Things" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Abstract != "X" {
		t.Errorf("abstract = %q; want %q", doc.Abstract, "X")
	}
	if doc.ProcessingStartedAt == nil || doc.ProcessingCompletedAt == nil {
		t.Error("processing timestamps not stamped")
	}

	if indexedSession != "demo" {
		t.Errorf("indexed into session %q; want demo", indexedSession)
	}
	for _, c := range indexed {
		want := commonModels.SectionBody
		if c.Page == 0 {
			want = commonModels.SectionAbstract
		}
		if c.Section != want {
			t.Errorf("chunk on page %d has section %s", c.Page, c.Section)
		}
	}
}

func TestPipelineRun_ExtractionFailure(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	seedDocument(t, docs, docModel.Document{
		Id:     "doc-2",
		Status: docModel.StatusUploaded,
	})

	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		return nil, errors.New("corrupt pdf")
	}}

	p := NewPipeline(loader, &mockIndex{}, docs)
	p.Run(ctx, jobModel.IngestJob{DocumentId: "doc-2", Path: "/tmp/bad.pdf"})

	doc, _ := docs.GetDocument(ctx, "doc-2")
	if doc.Status != docModel.StatusFailed {
		t.Fatalf("status = %s; want FAILED", doc.Status)
	}
	if !strings.Contains(doc.ErrorMessage, "corrupt pdf") {
		t.Errorf("error message %q does not carry the cause", doc.ErrorMessage)
	}
}

func TestPipelineRun_IndexFailure(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	seedDocument(t, docs, docModel.Document{
		Id:     "doc-3",
		Status: docModel.StatusUploaded,
	})

	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		return []string{"some content"}, nil
	}}
	index := &mockIndex{
		addFunc: func(ctx context.Context, session string, chunks []commonModels.Chunk) error {
			return errors.New("qdrant down")
		},
	}

	p := NewPipeline(loader, index, docs)
	p.Run(ctx, jobModel.IngestJob{DocumentId: "doc-3", Path: "/tmp/x.pdf"})

	doc, _ := docs.GetDocument(ctx, "doc-3")
	if doc.Status != docModel.StatusFailed {
		t.Fatalf("status = %s; want FAILED", doc.Status)
	}
}

func TestPipelineRun_PanicBecomesFailed(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	seedDocument(t, docs, docModel.Document{
		Id:     "doc-4",
		Status: docModel.StatusUploaded,
	})

	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		panic("parser blew up")
	}}

	p := NewPipeline(loader, &mockIndex{}, docs)
	p.Run(ctx, jobModel.IngestJob{DocumentId: "doc-4", Path: "/tmp/x.pdf"})

	doc, _ := docs.GetDocument(ctx, "doc-4")
	if doc.Status != docModel.StatusFailed {
		t.Fatalf("status = %s; want FAILED", doc.Status)
	}
	if !strings.Contains(doc.ErrorMessage, "parser blew up") {
		t.Errorf("error message %q does not carry the panic", doc.ErrorMessage)
	}
}

func TestPipelineRun_ConcurrentJobs(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	const jobs = 8
	for i := 0; i < jobs; i++ {
		seedDocument(t, docs, docModel.Document{
			Id:          fmt.Sprintf("doc-c%d", i),
			Filename:    fmt.Sprintf("paper-%d.pdf", i),
			SessionName: "demo",
			Status:      docModel.StatusUploaded,
		})
	}

	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		return []string{"Shared Title\n\nAbstract: Y\n\nBody."}, nil
	}}
	p := NewPipeline(loader, &mockIndex{}, docs)

	var wg sync.WaitGroup
	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Run(ctx, jobModel.IngestJob{
				DocumentId: fmt.Sprintf("doc-c%d", i),
				Path:       "/tmp/paper.pdf",
				TraceId:    fmt.Sprintf("trace-%d", i),
			})
		}(i)
	}
	wg.Wait()

	for i := 0; i < jobs; i++ {
		doc, _ := docs.GetDocument(ctx, fmt.Sprintf("doc-c%d", i))
		if doc.Status != docModel.StatusIndexed {
			t.Errorf("doc-c%d status = %s; want INDEXED (error: %s)", i, doc.Status, doc.ErrorMessage)
		}
	}
}

func TestPipelineRun_ReingestClearsErrorAndStaleChunks(t *testing.T) {
	ctx := context.Background()
	docs := store.InitInMemoryDocumentStore()
	seedDocument(t, docs, docModel.Document{
		Id:           "doc-5",
		Filename:     "paper.pdf",
		SessionName:  "demo",
		Status:       docModel.StatusFailed,
		ErrorMessage: "old failure",
	})

	var deletedSource string
	index := &mockIndex{
		deleteFunc: func(ctx context.Context, session string, filter commonModels.DeleteFilter) error {
			deletedSource = filter.Source
			return nil
		},
	}
	loader := &mockLoader{loadFunc: func(path string) ([]string, error) {
		return []string{"fresh content"}, nil
	}}

	p := NewPipeline(loader, index, docs)
	p.Run(ctx, jobModel.IngestJob{DocumentId: "doc-5", Path: "/tmp/paper.pdf", IsReingest: true})

	doc, _ := docs.GetDocument(ctx, "doc-5")
	if doc.Status != docModel.StatusIndexed {
		t.Fatalf("status = %s; want INDEXED", doc.Status)
	}
	if doc.ErrorMessage != "" {
		t.Errorf("error message not cleared: %q", doc.ErrorMessage)
	}
	if deletedSource != "paper.pdf" {
		t.Errorf("stale chunk delete filtered on %q; want paper.pdf", deletedSource)
	}
}
