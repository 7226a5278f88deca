package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/middleware"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/health", middleware.GetHandler)

	r.Router.Post("/upload", middleware.UploadHandler)
	r.Router.Post("/ask", middleware.AskHandler)

	r.Router.Get("/documents", middleware.ListDocumentsHandler)
	r.Router.Get("/documents/{id}/status", middleware.DocumentStatusHandler)
	r.Router.Get("/documents/{id}/highlights", middleware.ListHighlightsHandler)
	r.Router.Post("/documents/{id}/reingest", middleware.ReingestHandler)
	r.Router.Delete("/documents/{id}", middleware.DeleteDocumentHandler)

	r.Router.Get("/sessions", middleware.ListSessionsHandler)
	r.Router.Post("/sessions", middleware.CreateSessionHandler)
	r.Router.Delete("/sessions/{name}", middleware.DeleteSessionHandler)

	r.Router.Post("/highlights", middleware.CreateHighlightHandler)
	r.Router.Put("/highlights/{id}", middleware.UpdateHighlightHandler)
	r.Router.Delete("/highlights/{id}", middleware.DeleteHighlightHandler)

	r.Router.Get("/arxiv/search", middleware.ArxivSearchHandler)
	r.Router.Get("/arxiv/metadata/{id}", middleware.ArxivMetadataHandler)
	r.Router.Post("/arxiv/import", middleware.ArxivImportHandler)

	r.Router.Get("/stats/summary", middleware.StatsSummaryHandler)
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
