package job

import (
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

// Service carries the ingestion queue plus the stores the handlers read
// from. Uploads push an IngestJob onto IngestChannel and return; workers
// drain it in the background.
type Service struct {
	IngestChannel     chan jobModel.IngestJob
	RequestCount      int64
	DispatcherChannel chan bool
	Documents         docModel.DocumentStore
	Sessions          docModel.SessionStore
}

type ServiceConfig struct {
	IngestChannel     chan jobModel.IngestJob
	RequestCount      int64
	DispatcherChannel chan bool
	Documents         docModel.DocumentStore
	Sessions          docModel.SessionStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		IngestChannel:     cfg.IngestChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		Documents:         cfg.Documents,
		Sessions:          cfg.Sessions,
	}
}
