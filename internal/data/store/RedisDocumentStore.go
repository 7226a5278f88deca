package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// RedisDocumentStore keeps three key families:
//
//	doc:{id}                     -> document json
//	docname:{session}:{filename} -> id   (enforces the (filename, session) unique pair)
//	sessiondocs:{session}        -> set of ids
type RedisDocumentStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisDocumentStore(ctx context.Context) *RedisDocumentStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisDocumentStore)
	if inner == nil {
		return nil
	}
	return &RedisDocumentStore{
		store:  inner,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func docKey(id string) string { return "doc:" + id }

func docNameKey(session string, filename string) string {
	return fmt.Sprintf("docname:%s:%s", session, filename)
}

func sessionDocsKey(session string) string { return "sessiondocs:" + session }

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc docModel.Document) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "document Id", doc.Id)

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err = s.store.Set(ctx, docKey(doc.Id), data, config.RedisDocumentStoreTTL); err != nil {
		return err
	}
	if err = s.store.Set(ctx, docNameKey(doc.SessionName, doc.Filename), doc.Id, config.RedisDocumentStoreTTL); err != nil {
		return err
	}
	if err = s.store.SetAdd(ctx, sessionDocsKey(doc.SessionName), doc.Id); err != nil {
		return err
	}
	log.Debug("Saved document", "status", doc.Status)
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	var doc docModel.Document
	val, err := s.store.Get(ctx, docKey(id))
	if s.store.IsNil(err) || err != nil {
		return doc, false
	}
	if err = json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Error("Corrupt document record", "id", id, "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) GetDocumentByName(ctx context.Context, session string, filename string) (docModel.Document, bool) {
	id, err := s.store.Get(ctx, docNameKey(session, filename))
	if s.store.IsNil(err) || err != nil {
		return docModel.Document{}, false
	}
	return s.GetDocument(ctx, id)
}

func (s *RedisDocumentStore) ListDocuments(ctx context.Context, session string) ([]docModel.Document, error) {
	ids, err := s.store.SetMembers(ctx, sessionDocsKey(session))
	if err != nil {
		return nil, err
	}
	docs := make([]docModel.Document, 0, len(ids))
	for _, id := range ids {
		if doc, found := s.GetDocument(ctx, id); found {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	doc, found := s.GetDocument(ctx, id)
	if !found {
		return nil
	}
	if err := s.store.Del(ctx, docKey(id), docNameKey(doc.SessionName, doc.Filename)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, sessionDocsKey(doc.SessionName), id)
}

func TestDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		logger: logger_i.NewLogger("test document store"),
	}
}
