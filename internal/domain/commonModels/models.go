package commonModels

import "time"

type ChunkType string
type Section string

const (
	ChunkTypeDocument  ChunkType = "document"
	ChunkTypeHighlight ChunkType = "highlight"

	SectionAbstract Section = "abstract"
	SectionBody     Section = "body"
)

// Chunk is the unit of indexing and retrieval. Page is 0-indexed and page 0
// of an ingested PDF always carries SectionAbstract.
type Chunk struct {
	Id      string    `json:"chunk_id"`
	Text    string    `json:"content"`
	Source  string    `json:"source"` //filename inside the session
	Page    int       `json:"page"`
	Section Section   `json:"section"`
	Type    ChunkType `json:"type"`
}

type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// SearchFilter narrows index reads. Zero values mean "no constraint".
type SearchFilter struct {
	Sources     []string
	Section     Section
	Type        ChunkType
	ExcludeType ChunkType
}

// DeleteFilter removes index entries either by chunk ids or by source filename.
type DeleteFilter struct {
	Ids    []string
	Source string
}

type Highlight struct {
	Id          string    `json:"id"`
	DocumentId  string    `json:"document_id"`
	Page        int       `json:"page"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	Text        string    `json:"text"`
	Note        string    `json:"note,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	EmbeddingId string    `json:"embedding_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
