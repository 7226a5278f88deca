package rag_test

import (
	"context"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

// MockSessionIndex implements vectorDB.SessionIndex
type MockSessionIndex struct {
	// Control fields to simulate different behaviors
	OnAdd         func(ctx context.Context, session string, chunks []commonModels.Chunk) error
	OnSearch      func(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error)
	OnDelete      func(ctx context.Context, session string, filter commonModels.DeleteFilter) error
	OnDropSession func(ctx context.Context, session string) error
}

func (m *MockSessionIndex) Add(ctx context.Context, session string, chunks []commonModels.Chunk) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, session, chunks)
	}
	return nil
}

func (m *MockSessionIndex) Search(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, session, query, k, filter)
	}
	return nil, nil
}

func (m *MockSessionIndex) Delete(ctx context.Context, session string, filter commonModels.DeleteFilter) error {
	if m.OnDelete != nil {
		return m.OnDelete(ctx, session, filter)
	}
	return nil
}

func (m *MockSessionIndex) DropSession(ctx context.Context, session string) error {
	if m.OnDropSession != nil {
		return m.OnDropSession(ctx, session)
	}
	return nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnInvoke func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Invoke(ctx context.Context, prompt string) (string, error) {
	if m.OnInvoke != nil {
		return m.OnInvoke(ctx, prompt)
	}
	return "mock answer", nil
}

// MockLoader implements ingest.PageLoader
type MockLoader struct {
	OnLoadPages func(path string) ([]string, error)
}

func (m *MockLoader) LoadPages(path string) ([]string, error) {
	if m.OnLoadPages != nil {
		return m.OnLoadPages(path)
	}
	return []string{"default page"}, nil
}
