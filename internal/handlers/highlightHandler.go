package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

// CreateHighlightHandler saves a user annotation on a document.
// @Summary      Create a highlight
// @Description  Saves the annotation and embeds it into the session index so later questions surface it as priority context.
// @Tags         Highlights
// @Accept       json
// @Produce      json
// @Param        request  body      api.HighlightRequest  true  "Highlight payload"
// @Success      201      {object}  commonModels.Highlight
// @Failure      400      {object}  api.ErrorResponse  "Missing document id or text"
// @Failure      404      {object}  api.ErrorResponse  "Document not found"
// @Router       /highlights [post]
func CreateHighlightHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	requestData, ok := decodeHighlightRequest(w, r)
	if !ok {
		return
	}

	created, err := handlerInstance.highlights.Create(r.Context(), commonModels.Highlight{
		DocumentId:  requestData.DocumentId,
		Page:        requestData.Page,
		StartOffset: requestData.StartOffset,
		EndOffset:   requestData.EndOffset,
		Text:        requestData.Text,
		Note:        requestData.Note,
		Tags:        requestData.Tags,
	})
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusCreated, created)
}

// UpdateHighlightHandler rewrites a highlight and its index entry.
// @Summary      Update a highlight
// @Tags         Highlights
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Highlight ID"
// @Param        request  body      api.HighlightRequest  true  "Highlight payload"
// @Success      200      {object}  commonModels.Highlight
// @Failure      404      {object}  api.ErrorResponse  "Highlight not found"
// @Router       /highlights/{id} [put]
func UpdateHighlightHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	requestData, ok := decodeHighlightRequest(w, r)
	if !ok {
		return
	}

	updated, err := handlerInstance.highlights.Update(r.Context(), commonModels.Highlight{
		Id:          id,
		DocumentId:  requestData.DocumentId,
		Page:        requestData.Page,
		StartOffset: requestData.StartOffset,
		EndOffset:   requestData.EndOffset,
		Text:        requestData.Text,
		Note:        requestData.Note,
		Tags:        requestData.Tags,
	})
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, updated)
}

// DeleteHighlightHandler removes a highlight and its index entry.
// @Summary      Delete a highlight
// @Tags         Highlights
// @Produce      json
// @Param        id   path  string  true  "Highlight ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.ErrorResponse  "Highlight not found"
// @Router       /highlights/{id} [delete]
func DeleteHighlightHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	id := utils.GetChiURLParam(r, "id")
	if err := handlerInstance.highlights.Delete(r.Context(), id); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHighlightsHandler lists a document's highlights.
// @Summary      List highlights of a document
// @Tags         Highlights
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {array}   commonModels.Highlight
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents/{id}/highlights [get]
func ListHighlightsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	highlights, err := handlerInstance.highlights.List(r.Context(), documentId)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Highlight store error")
		return
	}
	if highlights == nil {
		highlights = []commonModels.Highlight{}
	}
	writeJsonResponse(w, http.StatusOK, highlights)
}

func decodeHighlightRequest(w http.ResponseWriter, r *http.Request) (api.HighlightRequest, bool) {
	var requestData api.HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return requestData, false
	}
	if requestData.DocumentId == "" || requestData.Text == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "document_id and text are required")
		return requestData, false
	}
	return requestData, true
}
