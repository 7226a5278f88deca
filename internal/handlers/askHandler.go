package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/PaperRAG/internal/adapter"
	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
)

// AskHandler answers one question against a session's indexed papers.
// @Summary      Ask a question
// @Description  Runs grounded question answering (or compare / lit_review synthesis) over the session's indexed documents and returns the answer with citations.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question, session, optional source filter and mode"
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.ErrorResponse  "Missing question, unknown session or unknown mode"
// @Failure      502      {object}  api.ErrorResponse  "Retrieval or generation failure"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Ask handler reader :", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Ask Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	result, err := handlerInstance.rag.Ask(r.Context(), adapter.ToAskRequest(requestData, traceIdFromContext(r.Context())))
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(result))
}

func writeQueryError(w http.ResponseWriter, err error) {
	var queryErr *queryModel.QueryError
	if errors.As(err, &queryErr) {
		switch queryErr.Kind {
		case queryModel.ErrorKindRequest:
			WriteErrorResponse(w, http.StatusBadRequest, queryErr.Error())
			return
		case queryModel.ErrorKindRetrieval, queryModel.ErrorKindGeneration:
			WriteErrorResponse(w, http.StatusBadGateway, queryErr.Error())
			return
		}
	}
	WriteErrorResponse(w, http.StatusInternalServerError, "Internal error")
}
