package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/PaperRAG/internal/handlers"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)

var UploadHandler = Wrap(handlers.UploadHandler)
var ReingestHandler = Wrap(handlers.ReingestHandler)
var DocumentStatusHandler = Wrap(handlers.DocumentStatusHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)

var AskHandler = Wrap(handlers.AskHandler)

var ListSessionsHandler = Wrap(handlers.ListSessionsHandler)
var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var DeleteSessionHandler = Wrap(handlers.DeleteSessionHandler)

var CreateHighlightHandler = Wrap(handlers.CreateHighlightHandler)
var UpdateHighlightHandler = Wrap(handlers.UpdateHighlightHandler)
var DeleteHighlightHandler = Wrap(handlers.DeleteHighlightHandler)
var ListHighlightsHandler = Wrap(handlers.ListHighlightsHandler)

var ArxivSearchHandler = Wrap(handlers.ArxivSearchHandler)
var ArxivMetadataHandler = Wrap(handlers.ArxivMetadataHandler)
var ArxivImportHandler = Wrap(handlers.ArxivImportHandler)

var StatsSummaryHandler = Wrap(handlers.StatsSummaryHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}
func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Info("New request received")
	//TODO:make this cleaner
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails, Wrap writes the response
	}
	re = rateLimiter(re)

	return re
}
