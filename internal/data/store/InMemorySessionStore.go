package store

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/docModel"
)

type InMemorySessionStore struct {
	mutex    *sync.RWMutex
	sessions map[string]docModel.Session
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		mutex:    new(sync.RWMutex),
		sessions: make(map[string]docModel.Session),
	}
}

func (store *InMemorySessionStore) SaveSession(ctx context.Context, session docModel.Session) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.sessions[session.Name] = session
	return nil
}

func (store *InMemorySessionStore) GetSession(ctx context.Context, name string) (docModel.Session, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	session, found := store.sessions[name]
	return session, found
}

func (store *InMemorySessionStore) ListSessions(ctx context.Context) ([]docModel.Session, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	sessions := make([]docModel.Session, 0, len(store.sessions))
	for _, session := range store.sessions {
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (store *InMemorySessionStore) DeleteSession(ctx context.Context, name string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.sessions, name)
	return nil
}
