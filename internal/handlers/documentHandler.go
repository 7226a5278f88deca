package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

func isSupportedDocument(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt", ".docx", ".rtf", ".odt":
		return true
	default:
		return false
	}
}

// UploadHandler receives a paper and queues its ingestion.
// @Summary      Upload a paper for ingestion
// @Description  Receives a file via multipart/form-data, registers it in the session, and queues a background ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        session  formData  string  false  "Session name (defaults to the default session)"
// @Param        file     formData  file    true   "The PDF (or txt/docx/rtf/odt) file to upload"
// @Success      202  {object}  api.UploadResponse  "Accepted - ingestion queued"
// @Failure      400  {object}  api.ErrorResponse   "Missing file or unsupported type"
// @Failure      500  {object}  api.ErrorResponse   "Storage or write error"
// @Router       /upload [post]
func UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	targetDir, errString := getUploadDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	sessionName := r.FormValue("session")
	if sessionName == "" {
		sessionName = config.DefaultSessionName
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if !isSupportedDocument(fileMetadata.Filename) {
		WriteErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("unsupported document type: %s", filepath.Ext(fileMetadata.Filename)))
		return
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
	storagePath := filepath.Join(targetDir, storedName)
	destinationFileWriter, err := os.Create(storagePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}

	if _, err := getOrCreateSession(r.Context(), sessionName); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Session store error")
		return
	}

	// Re-uploading the same filename into the same session replaces the
	// previous version: keep the document id, swap the file, reingest.
	isReingest := false
	doc, found := handlerInstance.service.Documents.GetDocumentByName(r.Context(), sessionName, fileMetadata.Filename)
	if found {
		isReingest = true
		doc.StoragePath = storagePath
	} else {
		doc = docModel.Document{
			Id:          utils.GetNewUUID(),
			Filename:    fileMetadata.Filename,
			SessionName: sessionName,
			StoragePath: storagePath,
			UploadedAt:  time.Now().UTC(),
		}
	}
	doc.Status = docModel.StatusUploaded
	if err := handlerInstance.service.Documents.SaveDocument(r.Context(), doc); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Document store error")
		return
	}

	EnqueueIngest(jobModel.IngestJob{
		DocumentId: doc.Id,
		Path:       storagePath,
		TraceId:    traceIdFromContext(r.Context()),
		IsReingest: isReingest,
		EnqueuedAt: time.Now().UTC(),
	})

	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc))
}

// ReingestHandler re-runs ingestion for an already uploaded document.
// @Summary      Reingest a document
// @Description  Clears the document's previous index entries and queues a fresh ingestion run from the stored file.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.UploadResponse
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Failure      409  {object}  api.ErrorResponse  "Original file no longer available"
// @Router       /documents/{id}/reingest [post]
func ReingestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.service.Documents.GetDocument(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	if doc.StoragePath == "" {
		WriteErrorResponse(w, http.StatusConflict, "Original file no longer available")
		return
	}

	EnqueueIngest(jobModel.IngestJob{
		DocumentId: doc.Id,
		Path:       doc.StoragePath,
		TraceId:    traceIdFromContext(r.Context()),
		IsReingest: true,
		EnqueuedAt: time.Now().UTC(),
	})

	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc))
}

// DocumentStatusHandler reports the ingestion lifecycle state of a document.
// @Summary      Get document status
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentStatusResponse
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Router       /documents/{id}/status [get]
func DocumentStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.service.Documents.GetDocument(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentStatusResponse(doc))
}

// ListDocumentsHandler lists a session's documents.
// @Summary      List documents in a session
// @Tags         Documents
// @Produce      json
// @Param        session  query     string  false  "Session name (defaults to the default session)"
// @Success      200  {array}   api.DocumentStatusResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessionName := r.URL.Query().Get("session")
	if sessionName == "" {
		sessionName = config.DefaultSessionName
	}

	docs, err := handlerInstance.service.Documents.ListDocuments(r.Context(), sessionName)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Document store error")
		return
	}

	responses := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, adapter.ToDocumentStatusResponse(doc))
	}
	writeJsonResponse(w, http.StatusOK, responses)
}

// DeleteDocumentHandler removes a document and its index entries.
// @Summary      Delete a document
// @Description  Deletes the document record, its highlights, and every index entry derived from it.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.service.Documents.GetDocument(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	// Index entries first, record last: a retried delete after a partial
	// failure still finds the record.
	if err := handlerInstance.index.Delete(r.Context(), doc.SessionName, commonModels.DeleteFilter{Source: doc.Filename}); err != nil {
		logRH.Error("Failed to delete index entries", "document", doc.Id, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Index delete failed")
		return
	}

	highlights, err := handlerInstance.highlights.List(r.Context(), doc.Id)
	if err == nil {
		for _, h := range highlights {
			if err := handlerInstance.highlights.Delete(r.Context(), h.Id); err != nil {
				logRH.Warn("Failed to delete highlight during document delete", "highlight", h.Id, "error", err)
			}
		}
	}

	removeStoredFile(doc)

	if err := handlerInstance.service.Documents.DeleteDocument(r.Context(), doc.Id); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Document store error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removeStoredFile deletes the uploaded file behind a document. A failure is
// logged but never blocks the cascade; the record delete still proceeds.
func removeStoredFile(doc docModel.Document) {
	if doc.StoragePath == "" {
		return
	}
	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		logRH.Warn("Failed to remove stored file", "document", doc.Id, "path", doc.StoragePath, "error", err)
	}
}
