package api

import (
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
)

// requests---------------------

type AskRequest struct {
	Question string   `json:"question" validate:"required" example:"What optimizer does the paper use?"`
	Session  string   `json:"session,omitempty" example:"Default Session"`
	Sources  []string `json:"sources,omitempty"`
	Mode     string   `json:"mode,omitempty" example:"qa"` //qa, compare or lit_review
	K        int      `json:"k,omitempty" example:"5"`
}

type CreateSessionRequest struct {
	Name string `json:"name" validate:"required" example:"transformer papers"`
}

type HighlightRequest struct {
	DocumentId  string   `json:"document_id" validate:"required"`
	Page        int      `json:"page"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Text        string   `json:"text" validate:"required"`
	Note        string   `json:"note,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ArxivImportRequest struct {
	ArxivId     string `json:"arxiv_id" validate:"required" example:"2411.04920"`
	Session     string `json:"session,omitempty"`
	DownloadPdf bool   `json:"download_pdf"`
}

// responses---------------------

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"document not found"`
}

type UploadResponse struct {
	DocumentId string `json:"document_id"`
	Filename   string `json:"filename"`
	Session    string `json:"session"`
	Status     string `json:"status" example:"UPLOADED"`
	StatusURL  string `json:"status_url"`
}

type DocumentStatusResponse struct {
	DocumentId            string     `json:"document_id"`
	Filename              string     `json:"filename"`
	Session               string     `json:"session"`
	Status                string     `json:"status" example:"INDEXED"`
	Title                 string     `json:"title,omitempty"`
	Abstract              string     `json:"abstract,omitempty"`
	PageCount             int        `json:"page_count,omitempty"`
	UploadedAt            time.Time  `json:"uploaded_at"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
}

type AskResponse struct {
	Mode      string                      `json:"mode"`
	Answer    string                      `json:"answer,omitempty"`
	Citations []queryModel.Citation       `json:"citations"`
	Compare   *queryModel.CompareResult   `json:"compare,omitempty"`
	LitReview *queryModel.LitReviewResult `json:"lit_review,omitempty"`
}

type SessionResponse struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentCount int       `json:"document_count"`
}
