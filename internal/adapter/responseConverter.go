package adapter

import (
	"fmt"

	"github.com/akolanti/PaperRAG/internal/api"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
)

func ToUploadResponse(doc docModel.Document) api.UploadResponse {
	return api.UploadResponse{
		DocumentId: doc.Id,
		Filename:   doc.Filename,
		Session:    doc.SessionName,
		Status:     string(doc.Status),
		StatusURL:  fmt.Sprintf("documents/%s/status", doc.Id),
	}
}

func ToDocumentStatusResponse(doc docModel.Document) api.DocumentStatusResponse {
	return api.DocumentStatusResponse{
		DocumentId:            doc.Id,
		Filename:              doc.Filename,
		Session:               doc.SessionName,
		Status:                string(doc.Status),
		Title:                 doc.Title,
		Abstract:              doc.Abstract,
		PageCount:             doc.PageCount,
		UploadedAt:            doc.UploadedAt,
		ProcessingStartedAt:   doc.ProcessingStartedAt,
		ProcessingCompletedAt: doc.ProcessingCompletedAt,
		ErrorMessage:          doc.ErrorMessage,
	}
}

func ToAskRequest(req api.AskRequest, traceId string) queryModel.AskRequest {
	return queryModel.AskRequest{
		Question: req.Question,
		Session:  req.Session,
		Sources:  req.Sources,
		Mode:     queryModel.Mode(req.Mode),
		K:        req.K,
		TraceId:  traceId,
	}
}

func ToAskResponse(result queryModel.AskResult) api.AskResponse {
	citations := result.Citations
	if citations == nil {
		//the contract promises a citations array on every answer, refusals included
		citations = []queryModel.Citation{}
	}
	return api.AskResponse{
		Mode:      string(result.Mode),
		Answer:    result.Answer,
		Citations: citations,
		Compare:   result.Compare,
		LitReview: result.LitReview,
	}
}

func ToSessionResponse(session docModel.Session, documentCount int) api.SessionResponse {
	return api.SessionResponse{
		Id:            session.Id,
		Name:          session.Name,
		CreatedAt:     session.CreatedAt,
		DocumentCount: documentCount,
	}
}

func BadRequest(message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
