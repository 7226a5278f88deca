package docModel

import (
	"context"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "UPLOADED"
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusIndexed    DocumentStatus = "INDEXED"
	StatusFailed     DocumentStatus = "FAILED"
)

type Session struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"` //unique, immutable once created
	CreatedAt time.Time `json:"created_at"`
}

type Document struct {
	Id          string         `json:"id"`
	Filename    string         `json:"filename"` //(filename, session) unique
	SessionName string         `json:"session"`
	Status      DocumentStatus `json:"status"`

	//metadata extracted from page 0
	Title     string `json:"title,omitempty"`
	Abstract  string `json:"abstract,omitempty"`
	PageCount int    `json:"page_count,omitempty"`

	StoragePath string `json:"storage_path,omitempty"` //kept for reingest

	UploadedAt            time.Time  `json:"uploaded_at"`
	ProcessingStartedAt   *time.Time `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time `json:"processing_completed_at,omitempty"`
	ErrorMessage          string     `json:"error_message,omitempty"`
}

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)
	GetDocumentByName(ctx context.Context, session string, filename string) (Document, bool)
	ListDocuments(ctx context.Context, session string) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

type SessionStore interface {
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, name string) (Session, bool)
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, name string) error
}

type HighlightStore interface {
	SaveHighlight(ctx context.Context, h commonModels.Highlight) error
	GetHighlight(ctx context.Context, id string) (commonModels.Highlight, bool)
	ListHighlights(ctx context.Context, documentId string) ([]commonModels.Highlight, error)
	DeleteHighlight(ctx context.Context, id string) error
}
