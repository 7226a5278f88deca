package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
)

type InMemoryRunLogStore struct {
	mutex *sync.RWMutex
	logs  []queryModel.RunLog
}

func InitInMemoryRunLogStore() *InMemoryRunLogStore {
	return &InMemoryRunLogStore{
		mutex: new(sync.RWMutex),
	}
}

func (store *InMemoryRunLogStore) AppendRunLog(ctx context.Context, log queryModel.RunLog) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.logs = append(store.logs, log)
	return nil
}

func (store *InMemoryRunLogStore) ListRunLogsSince(ctx context.Context, since time.Time) ([]queryModel.RunLog, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	var result []queryModel.RunLog
	for _, log := range store.logs {
		if !log.CreatedAt.Before(since) {
			result = append(result, log)
		}
	}
	return result, nil
}
