package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/config"
)

// ListSessionsHandler lists every session with its document count.
// @Summary      List sessions
// @Tags         Sessions
// @Produce      json
// @Success      200  {array}   api.SessionResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /sessions [get]
func ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	sessions, err := handlerInstance.service.Sessions.ListSessions(r.Context())
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Session store error")
		return
	}

	responses := make([]api.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		count := 0
		if docs, err := handlerInstance.service.Documents.ListDocuments(r.Context(), session.Name); err == nil {
			count = len(docs)
		}
		responses = append(responses, adapter.ToSessionResponse(session, count))
	}
	writeJsonResponse(w, http.StatusOK, responses)
}

// CreateSessionHandler creates a named session.
// @Summary      Create a session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateSessionRequest  true  "Session name"
// @Success      201      {object}  api.SessionResponse
// @Failure      400      {object}  api.ErrorResponse  "Missing name"
// @Failure      409      {object}  api.ErrorResponse  "Session already exists"
// @Router       /sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	var requestData api.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Name == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, found := handlerInstance.service.Sessions.GetSession(r.Context(), requestData.Name); found {
		WriteErrorResponse(w, http.StatusConflict, "Session already exists")
		return
	}

	session, err := getOrCreateSession(r.Context(), requestData.Name)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Session store error")
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(session, 0))
}

// DeleteSessionHandler removes a session and everything inside it.
// @Summary      Delete a session
// @Description  Deletes the session record, every document and highlight in it, and drops the session's index collection. The default session cannot be deleted.
// @Tags         Sessions
// @Produce      json
// @Param        name  path  string  true  "Session name"
// @Success      204  "Deleted"
// @Failure      400  {object}  api.ErrorResponse  "Default session cannot be deleted"
// @Failure      404  {object}  api.ErrorResponse  "Session not found"
// @Router       /sessions/{name} [delete]
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	name := utils.GetChiURLParam(r, "name")
	if name == config.DefaultSessionName {
		WriteErrorResponse(w, http.StatusBadRequest, "Default session cannot be deleted")
		return
	}
	if _, found := handlerInstance.service.Sessions.GetSession(r.Context(), name); !found {
		WriteErrorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	docs, err := handlerInstance.service.Documents.ListDocuments(r.Context(), name)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Document store error")
		return
	}
	for _, doc := range docs {
		if highlights, err := handlerInstance.highlights.List(r.Context(), doc.Id); err == nil {
			for _, h := range highlights {
				if err := handlerInstance.highlights.Delete(r.Context(), h.Id); err != nil {
					logRH.Warn("Failed to delete highlight during session delete", "highlight", h.Id, "error", err)
				}
			}
		}
		removeStoredFile(doc)
		if err := handlerInstance.service.Documents.DeleteDocument(r.Context(), doc.Id); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, "Document store error")
			return
		}
	}

	if err := handlerInstance.index.DropSession(r.Context(), name); err != nil {
		logRH.Error("Failed to drop session collection", "session", name, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Index delete failed")
		return
	}

	if err := handlerInstance.service.Sessions.DeleteSession(r.Context(), name); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Session store error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
