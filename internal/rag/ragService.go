package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/internal/rag/grounding"
	"github.com/akolanti/PaperRAG/internal/rag/ingest"
	"github.com/akolanti/PaperRAG/internal/rag/llm"
	"github.com/akolanti/PaperRAG/internal/rag/router"
	"github.com/akolanti/PaperRAG/internal/rag/synthesis"
	"github.com/akolanti/PaperRAG/internal/rag/vectorDB"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// Service is the only thing the worker and the handlers talk to. Everything
// below it (index, model, loader, lifecycle) stays private so tests can swap
// the collaborators without touching caller code.
type Service interface {
	// IngestDocument runs the full pipeline for one uploaded document. It is
	// fire-and-forget: the outcome lands on the document record, not here.
	IngestDocument(ctx context.Context, job jobModel.IngestJob)

	// Ask answers one question in the requested mode, recording a run log
	// for the attempt whether it succeeds or fails.
	Ask(ctx context.Context, req queryModel.AskRequest) (queryModel.AskResult, error)
}

type service struct {
	grounding *grounding.Engine
	synthesis *synthesis.Engine
	pipeline  *ingest.Pipeline
	documents docModel.DocumentStore
	sessions  docModel.SessionStore
	recorder  *metrics.Recorder
	logger    *logger_i.Logger
}

func NewService(
	index vectorDB.SessionIndex,
	provider llm.Provider,
	loader ingest.PageLoader,
	documents docModel.DocumentStore,
	sessions docModel.SessionStore,
	recorder *metrics.Recorder,
) Service {
	return &service{
		grounding: grounding.NewEngine(index, provider),
		synthesis: synthesis.NewEngine(index, provider),
		pipeline:  ingest.NewPipeline(loader, index, documents),
		documents: documents,
		sessions:  sessions,
		recorder:  recorder,
		logger:    logger_i.NewLogger("RAG Service :"),
	}
}

func (s *service) IngestDocument(ctx context.Context, job jobModel.IngestJob) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	s.pipeline.Run(ctx, job)
}

func (s *service) Ask(ctx context.Context, req queryModel.AskRequest) (queryModel.AskResult, error) {
	start := time.Now()

	if req.Session == "" {
		req.Session = config.DefaultSessionName
	}
	if req.Mode == "" {
		req.Mode = queryModel.ModeQA
	}

	result, retrieved, err := s.answer(ctx, req)

	s.recorder.LogQuery(ctx, queryModel.RunLog{
		Session:         req.Session,
		QuestionText:    req.Question,
		Mode:            req.Mode,
		Sources:         req.Sources,
		LatencyMs:       time.Since(start).Milliseconds(),
		RetrievedChunks: retrieved,
	}, err)

	if err != nil {
		return queryModel.AskResult{}, err
	}
	return result, nil
}

func (s *service) answer(ctx context.Context, req queryModel.AskRequest) (queryModel.AskResult, []queryModel.RetrievedChunk, error) {
	if req.Question == "" {
		return queryModel.AskResult{}, nil, queryModel.NewQueryError(queryModel.ErrorKindRequest, errors.New("missing question"))
	}
	if _, found := s.sessions.GetSession(ctx, req.Session); !found {
		return queryModel.AskResult{}, nil, queryModel.NewQueryError(queryModel.ErrorKindRequest, fmt.Errorf("session %q not found", req.Session))
	}

	switch req.Mode {
	case queryModel.ModeQA:
		return s.answerQA(ctx, req)
	case queryModel.ModeCompare:
		result, retrieved, err := s.synthesis.Compare(ctx, req.Question, req.Session, req.Sources)
		if err != nil {
			return queryModel.AskResult{}, nil, err
		}
		return queryModel.AskResult{Mode: req.Mode, Compare: result}, retrieved, nil
	case queryModel.ModeLitReview:
		result, retrieved, err := s.synthesis.LitReview(ctx, req.Question, req.Session, req.Sources)
		if err != nil {
			return queryModel.AskResult{}, nil, err
		}
		return queryModel.AskResult{Mode: req.Mode, LitReview: result}, retrieved, nil
	default:
		return queryModel.AskResult{}, nil, queryModel.NewQueryError(queryModel.ErrorKindRequest, fmt.Errorf("unknown mode %q", req.Mode))
	}
}

func (s *service) answerQA(ctx context.Context, req queryModel.AskRequest) (queryModel.AskResult, []queryModel.RetrievedChunk, error) {
	route := router.Classify(req.Question, len(req.Sources))
	s.logger.Debug("Routed question", "route", route, "session", req.Session)

	var answer queryModel.GroundedAnswer
	var err error

	switch route {
	case router.RouteTitle:
		answer, err = s.metadataShortcut(ctx, req, func(doc docModel.Document) string { return doc.Title })
	case router.RoutePageCount:
		answer, err = s.metadataShortcut(ctx, req, func(doc docModel.Document) string { return fmt.Sprintf("%d", doc.PageCount) })
	case router.RouteAboutPaper:
		answer, err = s.grounding.PaperOverview(ctx, req.Question, req.Session, req.Sources[0])
	default:
		answer, err = s.grounding.Answer(ctx, req.Question, req.Session, req.Sources, req.K)
	}
	if err != nil {
		return queryModel.AskResult{}, nil, err
	}

	return queryModel.AskResult{
		Mode:      queryModel.ModeQA,
		Answer:    answer.Answer,
		Citations: answer.Citations,
	}, answer.Retrieved, nil
}

// metadataShortcut serves title/page-count questions straight from the
// Document record. The index is never touched; a missing record is a
// request error, not a refusal.
func (s *service) metadataShortcut(ctx context.Context, req queryModel.AskRequest, field func(docModel.Document) string) (queryModel.GroundedAnswer, error) {
	source := req.Sources[0]
	doc, found := s.documents.GetDocumentByName(ctx, req.Session, source)
	if !found {
		return queryModel.GroundedAnswer{}, queryModel.NewQueryError(queryModel.ErrorKindRequest,
			fmt.Errorf("document %q not found in session %q", source, req.Session))
	}

	return queryModel.GroundedAnswer{
		Answer:    field(doc),
		Citations: []queryModel.Citation{},
	}, nil
}
