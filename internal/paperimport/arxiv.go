package paperimport

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/customHttpClient"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("ArXiv ")

// Paper is the metadata surface of one arXiv entry.
type Paper struct {
	ArxivId         string   `json:"arxiv_id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Abstract        string   `json:"abstract"`
	PublishedDate   string   `json:"published_date"`
	PdfUrl          string   `json:"pdf_url"`
	EntryUrl        string   `json:"entry_url"`
	Categories      []string `json:"categories"`
	PrimaryCategory string   `json:"primary_category"`
}

// ArxivClient talks to the arXiv Atom API over the shared pooled transport.
type ArxivClient struct {
	HTTP    *http.Client
	BaseURL string
}

func NewArxivClient() *ArxivClient {
	return &ArxivClient{
		HTTP:    customHttpClient.GetClient(),
		BaseURL: config.ArxivAPIBase,
	}
}

//atom wire format ------------------

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Id        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href  string `xml:"href,attr"`
		Rel   string `xml:"rel,attr"`
		Title string `xml:"title,attr"`
	} `xml:"link"`
	Categories []struct {
		Term string `xml:"term,attr"`
	} `xml:"category"`
	PrimaryCategory struct {
		Term string `xml:"term,attr"`
	} `xml:"primary_category"`
}

func (c *ArxivClient) Search(ctx context.Context, query string, maxResults int) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > config.ArxivMaxResultsCap {
		maxResults = config.ArxivMaxResultsCap
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	feed, err := c.fetchFeed(ctx, params)
	if err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entry.toPaper())
	}
	logger.Info("arXiv search", "query", query, "results", len(papers))
	return papers, nil
}

func (c *ArxivClient) FetchMetadata(ctx context.Context, arxivId string) (Paper, error) {
	params := url.Values{}
	params.Set("id_list", arxivId)

	feed, err := c.fetchFeed(ctx, params)
	if err != nil {
		return Paper{}, err
	}

	// The API answers an id_list miss with an empty feed or a stub entry
	// with no id, both mean "no such paper".
	if len(feed.Entries) == 0 || strings.TrimSpace(feed.Entries[0].Id) == "" {
		return Paper{}, fmt.Errorf("paper with arXiv id %q not found", arxivId)
	}
	return feed.Entries[0].toPaper(), nil
}

// DownloadPDF fetches the paper's PDF into saveDir and returns the local
// path. The filename keeps the arXiv id plus a sanitized slice of the title
// so uploads stay recognizable in session listings.
func (c *ArxivClient) DownloadPDF(ctx context.Context, paper Paper, saveDir string) (string, error) {
	if paper.PdfUrl == "" {
		return "", fmt.Errorf("paper %s has no pdf link", paper.ArxivId)
	}
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating save dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, paper.PdfUrl, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pdf download returned status %d", resp.StatusCode)
	}

	filename := fmt.Sprintf("%s_%s.pdf", strings.ReplaceAll(paper.ArxivId, "/", "_"), sanitizeTitle(paper.Title))
	path := filepath.Join(saveDir, filename)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating pdf file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("writing pdf file: %w", err)
	}

	logger.Info("PDF downloaded", "arxivId", paper.ArxivId, "path", path)
	return path, nil
}

func (c *ArxivClient) fetchFeed(ctx context.Context, params url.Values) (*atomFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv api returned status %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding arxiv feed: %w", err)
	}
	return &feed, nil
}

func (e atomEntry) toPaper() Paper {
	p := Paper{
		ArxivId:         strings.TrimPrefix(e.Id, "http://arxiv.org/abs/"),
		Title:           collapseWhitespace(e.Title),
		Abstract:        strings.TrimSpace(e.Summary),
		EntryUrl:        e.Id,
		PrimaryCategory: e.PrimaryCategory.Term,
	}
	if len(e.Published) >= 10 {
		p.PublishedDate = e.Published[:10]
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, a.Name)
	}
	for _, c := range e.Categories {
		p.Categories = append(p.Categories, c.Term)
	}
	for _, l := range e.Links {
		if l.Title == "pdf" {
			p.PdfUrl = l.Href
		}
	}
	if p.PdfUrl == "" && p.ArxivId != "" {
		p.PdfUrl = "https://arxiv.org/pdf/" + p.ArxivId
	}
	return p
}

// Titles in the feed carry line breaks and runs of spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sanitizeTitle(title string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, title)
	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	return strings.TrimSpace(sanitized)
}
