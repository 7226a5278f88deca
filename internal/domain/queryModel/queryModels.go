package queryModel

import (
	"context"
	"time"
)

type Mode string

const (
	ModeQA        Mode = "qa"
	ModeCompare   Mode = "compare"
	ModeLitReview Mode = "lit_review"
)

type AskRequest struct {
	Question string   `json:"question"`
	Session  string   `json:"session,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Mode     Mode     `json:"mode,omitempty"`
	K        int      `json:"k,omitempty"`
	TraceId  string   `json:"-"`
}

// Citation is derived per query, one entry per distinct (source, page) pair,
// Count being how many retrieved chunks shared that pair.
type Citation struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Count  int    `json:"count"`
}

type GroundedAnswer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`

	//the document chunks the answer was grounded on, kept for RunLog recording
	Retrieved []RetrievedChunk `json:"-"`
}

type RetrievedChunk struct {
	Doc         string  `json:"doc"`
	Page        int     `json:"page"`
	ChunkId     string  `json:"chunk_id"`
	Score       float32 `json:"score"`
	TextPreview string  `json:"text_preview"`
}

// AskResult is the mode-tagged union returned by the rag service. Exactly one
// of the payload branches is populated for the request's mode.
type AskResult struct {
	Mode      Mode             `json:"mode"`
	Answer    string           `json:"answer,omitempty"`
	Citations []Citation       `json:"citations,omitempty"`
	Compare   *CompareResult   `json:"compare,omitempty"`
	LitReview *LitReviewResult `json:"lit_review,omitempty"`
}

//synthesis shapes------------------

type Evidence struct {
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

type PaperStance struct {
	PaperId  string     `json:"paper_id"`
	Stance   string     `json:"stance"` //supports|contradicts|neutral
	Evidence []Evidence `json:"evidence"`
}

type Claim struct {
	Claim  string        `json:"claim"`
	Papers []PaperStance `json:"papers"`
}

type CompareResult struct {
	Topic       string   `json:"topic"`
	Claims      []Claim  `json:"claims"`
	NumPapers   int      `json:"num_papers"`
	Sources     []string `json:"sources"`
	RawResponse string   `json:"raw_response,omitempty"`
	Error       string   `json:"error,omitempty"`
	Message     string   `json:"message,omitempty"`
}

type ReviewCitation struct {
	Paper string `json:"paper"`
	Page  int    `json:"page"`
}

type Paragraph struct {
	Text      string           `json:"text"`
	Citations []ReviewCitation `json:"citations"`
}

type ReviewSection struct {
	Heading    string      `json:"heading"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

type LitReviewResult struct {
	Title       string          `json:"title"`
	Outline     []string        `json:"outline"`
	Sections    []ReviewSection `json:"sections"`
	NumPapers   int             `json:"num_papers"`
	Sources     []string        `json:"sources"`
	RawResponse string          `json:"raw_response,omitempty"`
	Error       string          `json:"error,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// Failure kind names recorded as RunLog.ErrorType.
const (
	ErrorKindRequest    = "request_error"
	ErrorKindRetrieval  = "retrieval_failure"
	ErrorKindGeneration = "generation_failure"
	ErrorKindInternal   = "internal_failure"
)

// QueryError tags a failure with its kind so the run log can aggregate
// errors by what broke rather than by message text.
type QueryError struct {
	Kind string
	Err  error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func NewQueryError(kind string, err error) *QueryError {
	return &QueryError{Kind: kind, Err: err}
}

// RunLog is written once per query attempt, success or failure, and is
// immutable after that.
type RunLog struct {
	Session          string           `json:"session"`
	QuestionText     string           `json:"question_text"`
	Mode             Mode             `json:"mode"`
	Sources          []string         `json:"sources"`
	LatencyMs        int64            `json:"latency_ms"`
	RetrievedChunks  []RetrievedChunk `json:"retrieved_chunks"`
	PromptTokens     *int             `json:"prompt_tokens,omitempty"`
	CompletionTokens *int             `json:"completion_tokens,omitempty"`
	ErrorType        string           `json:"error_type,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type RunLogStore interface {
	AppendRunLog(ctx context.Context, log RunLog) error
	ListRunLogsSince(ctx context.Context, since time.Time) ([]RunLog, error)
}
