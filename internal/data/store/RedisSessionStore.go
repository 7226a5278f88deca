package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/docModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisSessionStore(ctx context.Context) *RedisSessionStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if inner == nil {
		return nil
	}
	return &RedisSessionStore{
		store:  inner,
		logger: logger_i.NewLogger("SessionStore"),
	}
}

func sessionKey(name string) string { return "session:" + name }

const sessionMembersKey = "sessions"

func (s *RedisSessionStore) SaveSession(ctx context.Context, session docModel.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err = s.store.Set(ctx, sessionKey(session.Name), data, config.RedisDocumentStoreTTL); err != nil {
		return err
	}
	return s.store.SetAdd(ctx, sessionMembersKey, session.Name)
}

func (s *RedisSessionStore) GetSession(ctx context.Context, name string) (docModel.Session, bool) {
	var session docModel.Session
	val, err := s.store.Get(ctx, sessionKey(name))
	if s.store.IsNil(err) || err != nil {
		return session, false
	}
	if err = json.Unmarshal([]byte(val), &session); err != nil {
		s.logger.Error("Corrupt session record", "name", name, "error", err)
		return session, false
	}
	return session, true
}

func (s *RedisSessionStore) ListSessions(ctx context.Context) ([]docModel.Session, error) {
	names, err := s.store.SetMembers(ctx, sessionMembersKey)
	if err != nil {
		return nil, err
	}
	sessions := make([]docModel.Session, 0, len(names))
	for _, name := range names {
		if session, found := s.GetSession(ctx, name); found {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (s *RedisSessionStore) DeleteSession(ctx context.Context, name string) error {
	if err := s.store.Del(ctx, sessionKey(name)); err != nil {
		return err
	}
	return s.store.SetRemove(ctx, sessionMembersKey, name)
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test session store"),
	}
}
