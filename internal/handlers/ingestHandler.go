package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/paperimport"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/highlight"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var (
	handlerInstance *RequestHandler //private singleton
	once            sync.Once
	logIH           *logger_i.Logger
	logRH           *logger_i.Logger
)

// RequestHandler holds everything the HTTP layer needs. Handlers are plain
// functions so the chi router and middleware can wrap them, the singleton
// keeps them off global service variables.
type RequestHandler struct {
	service    *job.Service
	rag        rag.Service
	highlights *highlight.Service
	importer   *paperimport.Importer
	recorder   *metrics.Recorder
	index      vectorDB.SessionIndex
}

type HandlerConfig struct {
	JobService *job.Service
	RagService rag.Service
	Highlights *highlight.Service
	Importer   *paperimport.Importer
	Recorder   *metrics.Recorder
	Index      vectorDB.SessionIndex
}

func InitRequestHandlers(cfg HandlerConfig) {
	once.Do(func() {
		handlerInstance = &RequestHandler{
			service:    cfg.JobService,
			rag:        cfg.RagService,
			highlights: cfg.Highlights,
			importer:   cfg.Importer,
			recorder:   cfg.Recorder,
			index:      cfg.Index,
		}

		logIH = logger_i.NewLogger("IngestHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logIH.Info("Starting request handlers")
	})
}

// EnqueueIngest pushes one ingestion job to the worker pool. Every job also
// signals the dispatcher: page extraction and embedding are batch work with
// external calls, so ingestion always earns a worker while idle-timeout
// retirement keeps the pool small between uploads.
func EnqueueIngest(ingestJob jobModel.IngestJob) {
	logIH.With("traceId", ingestJob.TraceId, "document id", ingestJob.DocumentId)
	logIH.Info("Queueing ingestion job")

	metrics.IncrementJobsInQueue()

	handlerInstance.service.IngestChannel <- ingestJob //blocking send to prevent the system from being overwhelmed

	accurateCount := atomic.AddInt64(&handlerInstance.service.RequestCount, 1)
	metrics.StartDispatcherSignalCount()
	logIH.Debug("Request count ", accurateCount)
	handlerInstance.service.DispatcherChannel <- true
}

func getOrCreateSession(ctx context.Context, name string) (docModel.Session, error) {
	if session, found := handlerInstance.service.Sessions.GetSession(ctx, name); found {
		return session, nil
	}

	session := docModel.Session{
		Id:        utils.GetNewUUID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := handlerInstance.service.Sessions.SaveSession(ctx, session); err != nil {
		return docModel.Session{}, err
	}
	logIH.Info("Created session", "name", name)
	return session, nil
}
