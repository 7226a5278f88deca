package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/config"
)

// ArxivSearchHandler searches the arXiv API.
// @Summary      Search arXiv
// @Tags         ArXiv
// @Produce      json
// @Param        query        query     string  true   "arXiv search query"
// @Param        max_results  query     int     false  "Maximum results (capped at 50)"
// @Success      200  {array}   paperimport.Paper
// @Failure      400  {object}  api.ErrorResponse  "Missing query"
// @Failure      502  {object}  api.ErrorResponse  "arXiv API failure"
// @Router       /arxiv/search [get]
func ArxivSearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}
	maxResults, _ := strconv.Atoi(r.URL.Query().Get("max_results"))

	papers, err := handlerInstance.importer.Arxiv.Search(r.Context(), query, maxResults)
	if err != nil {
		logRH.Error("arXiv search failed", "query", query, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "arXiv search failed")
		return
	}
	writeJsonResponse(w, http.StatusOK, papers)
}

// ArxivMetadataHandler fetches one paper's metadata by arXiv id.
// @Summary      Get arXiv paper metadata
// @Tags         ArXiv
// @Produce      json
// @Param        id   path      string  true  "arXiv ID"
// @Success      200  {object}  paperimport.Paper
// @Failure      404  {object}  api.ErrorResponse  "Paper not found"
// @Router       /arxiv/metadata/{id} [get]
func ArxivMetadataHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	paper, err := handlerInstance.importer.Arxiv.FetchMetadata(r.Context(), id)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, paper)
}

// ArxivImportHandler pulls an arXiv paper into a session.
// @Summary      Import a paper from arXiv
// @Description  Fetches the paper's metadata and, when download_pdf is set, downloads the PDF and queues the normal ingestion pipeline.
// @Tags         ArXiv
// @Accept       json
// @Produce      json
// @Param        request  body      api.ArxivImportRequest  true  "arXiv id, target session and download flag"
// @Success      202      {object}  paperimport.ImportResult
// @Failure      400      {object}  api.ErrorResponse  "Missing arXiv id"
// @Failure      502      {object}  api.ErrorResponse  "arXiv API failure"
// @Router       /arxiv/import [post]
func ArxivImportHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.ArxivImportRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.ArxivId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "arxiv_id is required")
		return
	}
	if requestData.Session == "" {
		requestData.Session = config.DefaultSessionName
	}

	result, err := handlerInstance.importer.ImportPaper(r.Context(), requestData.ArxivId, requestData.Session, requestData.DownloadPdf, traceIdFromContext(r.Context()))
	if err != nil {
		logRH.Error("arXiv import failed", "arxivId", requestData.ArxivId, "error", err)
		WriteErrorResponse(w, http.StatusBadGateway, "arXiv import failed")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, result)
}
