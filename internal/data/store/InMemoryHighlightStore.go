package store

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
)

type InMemoryHighlightStore struct {
	mutex      *sync.RWMutex
	highlights map[string]commonModels.Highlight
}

func InitInMemoryHighlightStore() *InMemoryHighlightStore {
	return &InMemoryHighlightStore{
		mutex:      new(sync.RWMutex),
		highlights: make(map[string]commonModels.Highlight),
	}
}

func (store *InMemoryHighlightStore) SaveHighlight(ctx context.Context, h commonModels.Highlight) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.highlights[h.Id] = h
	return nil
}

func (store *InMemoryHighlightStore) GetHighlight(ctx context.Context, id string) (commonModels.Highlight, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	h, found := store.highlights[id]
	return h, found
}

func (store *InMemoryHighlightStore) ListHighlights(ctx context.Context, documentId string) ([]commonModels.Highlight, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	var result []commonModels.Highlight
	for _, h := range store.highlights {
		if h.DocumentId == documentId {
			result = append(result, h)
		}
	}
	return result, nil
}

func (store *InMemoryHighlightStore) DeleteHighlight(ctx context.Context, id string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.highlights, id)
	return nil
}
