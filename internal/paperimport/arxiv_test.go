package paperimport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2411.04920v4</id>
    <title>Attention Is
      Not All You Need</title>
    <summary>  We revisit attention mechanisms.  </summary>
    <published>2025-06-04T17:59:59Z</published>
    <author><name>A. Researcher</name></author>
    <author><name>B. Scientist</name></author>
    <link href="http://arxiv.org/abs/2411.04920v4" rel="alternate"/>
    <link href="http://arxiv.org/pdf/2411.04920v4" rel="related" title="pdf"/>
    <category term="cs.CL"/>
    <category term="cs.AI"/>
  </entry>
</feed>`

func feedServer(t *testing.T, checkQuery func(q map[string][]string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if checkQuery != nil {
			checkQuery(r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
}

func TestSearch_ParsesAtomFeed(t *testing.T) {
	server := feedServer(t, func(q map[string][]string) {
		if q["search_query"][0] != "attention" {
			t.Errorf("search_query = %v", q["search_query"])
		}
		if q["max_results"][0] != "5" {
			t.Errorf("max_results = %v", q["max_results"])
		}
	})
	defer server.Close()

	c := &ArxivClient{HTTP: server.Client(), BaseURL: server.URL}
	papers, err := c.Search(context.Background(), "attention", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("got %d papers", len(papers))
	}

	p := papers[0]
	if p.ArxivId != "2411.04920v4" {
		t.Errorf("arxiv id = %q", p.ArxivId)
	}
	if p.Title != "Attention Is Not All You Need" {
		t.Errorf("title = %q (whitespace not collapsed?)", p.Title)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "A. Researcher" {
		t.Errorf("authors = %v", p.Authors)
	}
	if p.Abstract != "We revisit attention mechanisms." {
		t.Errorf("abstract = %q", p.Abstract)
	}
	if p.PublishedDate != "2025-06-04" {
		t.Errorf("published = %q", p.PublishedDate)
	}
	if p.PdfUrl != "http://arxiv.org/pdf/2411.04920v4" {
		t.Errorf("pdf url = %q", p.PdfUrl)
	}
	if len(p.Categories) != 2 {
		t.Errorf("categories = %v", p.Categories)
	}
}

func TestSearch_CapsMaxResults(t *testing.T) {
	server := feedServer(t, func(q map[string][]string) {
		if q["max_results"][0] != "50" {
			t.Errorf("max_results = %v; want capped at 50", q["max_results"])
		}
	})
	defer server.Close()

	c := &ArxivClient{HTTP: server.Client(), BaseURL: server.URL}
	if _, err := c.Search(context.Background(), "x", 500); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
}

func TestFetchMetadata_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer server.Close()

	c := &ArxivClient{HTTP: server.Client(), BaseURL: server.URL}
	if _, err := c.FetchMetadata(context.Background(), "9999.00000"); err == nil {
		t.Error("expected not-found error")
	}
}

func TestSanitizeTitle(t *testing.T) {
	got := sanitizeTitle("Graphs: A Survey? (2024)")
	if got != "Graphs A Survey 2024" {
		t.Errorf("sanitizeTitle = %q", got)
	}
}

func TestImportPaper_RegistersAndEnqueues(t *testing.T) {
	feed := feedServer(t, nil)
	defer feed.Close()

	pdf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer pdf.Close()

	// Steer the pdf link at the local stub
	client := &ArxivClient{HTTP: feed.Client(), BaseURL: feed.URL}

	var enqueued []jobModel.IngestJob
	imp := &Importer{
		Arxiv:     client,
		Documents: store.InitInMemoryDocumentStore(),
		Sessions:  store.InitInMemorySessionStore(),
		SaveDir:   t.TempDir(),
		Enqueue:   func(j jobModel.IngestJob) { enqueued = append(enqueued, j) },
	}

	// Metadata fetch goes through the feed stub; patch the pdf url onto the
	// stub server before download.
	paper, err := client.FetchMetadata(context.Background(), "2411.04920v4")
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	paper.PdfUrl = pdf.URL
	path, err := client.DownloadPDF(context.Background(), paper, imp.SaveDir)
	if err != nil {
		t.Fatalf("DownloadPDF failed: %v", err)
	}
	if path == "" {
		t.Fatal("no path returned")
	}

	// Full import with metadata only (no second download needed here)
	result, err := imp.ImportPaper(context.Background(), "2411.04920v4", "arxiv-session", false, "trace-1")
	if err != nil {
		t.Fatalf("ImportPaper failed: %v", err)
	}
	if !result.Success || result.Status != "METADATA_ONLY" {
		t.Errorf("result = %+v", result)
	}
	if _, found := imp.Sessions.GetSession(context.Background(), "arxiv-session"); !found {
		t.Error("session not created")
	}
	if len(enqueued) != 0 {
		t.Errorf("metadata-only import enqueued %d jobs", len(enqueued))
	}
}
