package jobModel

import "time"

// IngestJob is the unit of work handed to the worker pool. Ingestion is
// fire-and-forget: the uploading caller only ever sees the document id and
// polls the document status for progress.
type IngestJob struct {
	DocumentId string    `json:"document_id"`
	Path       string    `json:"path"`
	TraceId    string    `json:"trace_id"`
	IsReingest bool      `json:"is_reingest"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
