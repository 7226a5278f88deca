// @title           PaperRAG API
// @version         1.0
// @description     This API ingests scientific papers and answers grounded questions over them
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/store"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	jobmodel "github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/internal/handlers"
	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/paperimport"
	"github.com/akolanti/PaperRAG/internal/rag"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/PaperRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/PaperRAG/internal/rag/highlight"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/llm/gemini"
	"github.com/akolanti/PaperRAG/internal/rag/llm/openaiLLM"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/PaperRAG/internal/server"
	"github.com/akolanti/PaperRAG/internal/worker"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered ingestion channel
	ingestChannel := make(chan jobmodel.IngestJob, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	documents, sessions, runLogs, highlights := initStores(serviceContext, logger)

	serviceConfig := job.ServiceConfig{
		IngestChannel:     ingestChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		Documents:         documents,
		Sessions:          sessions,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	embedder := initEmbedder(serviceContext)
	llmProvider := initLLMProvider(serviceContext)
	if embedder == nil || llmProvider == nil {
		logger.Error("Model providers failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext, embedder)
	if vectorDB == nil {
		logger.Error("Vector DB failed to initialize. Shutting down.")
		return
	}

	recorder := metrics.NewRecorder(runLogs)
	ragService := rag.NewService(vectorDB, llmProvider, ingest.FileLoader{}, documents, sessions, recorder)
	highlightService := highlight.NewService(vectorDB, documents, highlights)

	workingDir, err := os.Getwd()
	if err != nil {
		logger.Error("Cannot resolve working directory", "error", err)
		return
	}
	importer := &paperimport.Importer{
		Arxiv:     paperimport.NewArxivClient(),
		Documents: documents,
		Sessions:  sessions,
		SaveDir:   filepath.Join(workingDir, "uploaded_papers"),
		Enqueue:   handlers.EnqueueIngest,
	}

	handlers.InitRequestHandlers(handlers.HandlerConfig{
		JobService: service,
		RagService: ragService,
		Highlights: highlightService,
		Importer:   importer,
		Recorder:   recorder,
		Index:      vectorDB,
	})

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func initStores(ctx context.Context, logger *logger_i.Logger) (docModel.DocumentStore, docModel.SessionStore, queryModel.RunLogStore, docModel.HighlightStore) {
	redisDocuments := store.GetRedisDocumentStore(ctx)
	redisSessions := store.GetRedisSessionStore(ctx)
	redisRunLogs := store.GetRedisRunLogStore(ctx)
	redisHighlights := store.GetRedisHighlightStore(ctx)

	if redisDocuments == nil || redisSessions == nil || redisRunLogs == nil || redisHighlights == nil {
		if config.FALLBACK_REDIS_TO_INTERNALSTORE {
			logger.Error("Redis stores are offline, using in-memory stores")
			return store.InitInMemoryDocumentStore(), store.InitInMemorySessionStore(),
				store.InitInMemoryRunLogStore(), store.InitInMemoryHighlightStore()
		}
		logger.Error("Redis stores are offline")
		return nil, nil, nil, nil
	}
	return redisDocuments, redisSessions, redisRunLogs, redisHighlights
}

func initEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(ctx, config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey())
}

func initLLMProvider(ctx context.Context) llm.Provider {
	if config.LLMProvider == "openai" {
		return openaiLLM.GetOpenAIClient(ctx, config.OpenAIModelName, config.OpenAIAPIKey())
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey())
}
