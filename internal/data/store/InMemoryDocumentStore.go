package store

import (
	"context"
	"sync"

	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Stores")

type InMemoryDocumentStore struct {
	mutex  *sync.RWMutex
	byId   map[string]docModel.Document
	byName map[string]string //"{session}\x00{filename}" -> id
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		mutex:  new(sync.RWMutex),
		byId:   make(map[string]docModel.Document),
		byName: make(map[string]string),
	}
}

func nameIndexKey(session string, filename string) string {
	return session + "\x00" + filename
}

func (store *InMemoryDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.byId[doc.Id] = doc
	store.byName[nameIndexKey(doc.SessionName, doc.Filename)] = doc.Id
	return nil
}

func (store *InMemoryDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	doc, found := store.byId[id]
	return doc, found
}

func (store *InMemoryDocumentStore) GetDocumentByName(ctx context.Context, session string, filename string) (docModel.Document, bool) {
	store.mutex.RLock()
	id, found := store.byName[nameIndexKey(session, filename)]
	store.mutex.RUnlock()
	if !found {
		return docModel.Document{}, false
	}
	return store.GetDocument(ctx, id)
}

func (store *InMemoryDocumentStore) ListDocuments(ctx context.Context, session string) ([]docModel.Document, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	var docs []docModel.Document
	for _, doc := range store.byId {
		if doc.SessionName == session {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (store *InMemoryDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	doc, found := store.byId[id]
	if !found {
		return nil
	}
	delete(store.byId, id)
	delete(store.byName, nameIndexKey(doc.SessionName, doc.Filename))
	inMemLogger.Debug("Deleted document", "id", id)
	return nil
}
