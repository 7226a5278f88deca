package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type RedisHighlightStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisHighlightStore(ctx context.Context) *RedisHighlightStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisHighlightStore)
	if inner == nil {
		return nil
	}
	return &RedisHighlightStore{
		store:  inner,
		logger: logger_i.NewLogger("HighlightStore"),
	}
}

func highlightKey(id string) string { return "highlight:" + id }

func docHighlightsKey(documentId string) string { return "dochighlights:" + documentId }

func (s *RedisHighlightStore) SaveHighlight(ctx context.Context, h commonModels.Highlight) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, highlightKey(h.Id), data, config.RedisDocumentStoreTTL); err != nil {
		return err
	}
	return s.store.SetAdd(ctx, docHighlightsKey(h.DocumentId), h.Id)
}

func (s *RedisHighlightStore) GetHighlight(ctx context.Context, id string) (commonModels.Highlight, bool) {
	var h commonModels.Highlight
	val, err := s.store.Get(ctx, highlightKey(id))
	if s.store.IsNil(err) || err != nil {
		return h, false
	}
	if err = json.Unmarshal([]byte(val), &h); err != nil {
		s.logger.Error("Corrupt highlight record", "id", id, "error", err)
		return h, false
	}
	return h, true
}

func (s *RedisHighlightStore) ListHighlights(ctx context.Context, documentId string) ([]commonModels.Highlight, error) {
	ids, err := s.store.SetMembers(ctx, docHighlightsKey(documentId))
	if err != nil {
		return nil, err
	}
	highlights := make([]commonModels.Highlight, 0, len(ids))
	for _, id := range ids {
		if h, found := s.GetHighlight(ctx, id); found {
			highlights = append(highlights, h)
		}
	}
	return highlights, nil
}

func (s *RedisHighlightStore) DeleteHighlight(ctx context.Context, id string) error {
	h, found := s.GetHighlight(ctx, id)
	if !found {
		return nil
	}
	if err := s.store.Del(ctx, highlightKey(id)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, docHighlightsKey(h.DocumentId), id)
}

func TestHighlightStore(store *redisStore.Store) *RedisHighlightStore {
	return &RedisHighlightStore{
		store:  store,
		logger: logger_i.NewLogger("test highlight store"),
	}
}
