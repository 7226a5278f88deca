package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/data/redisStore"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

// RedisRunLogStore appends each RunLog to a per-day list (runlog:2026-08-31)
// with a TTL, so the window the summary cares about stays bounded without a
// trim job. Records are never rewritten after the push.
type RedisRunLogStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisRunLogStore(ctx context.Context) *RedisRunLogStore {
	inner := redisStore.GetRedisStore(ctx, config.RedisRunLogStore)
	if inner == nil {
		return nil
	}
	return &RedisRunLogStore{
		store:  inner,
		logger: logger_i.NewLogger("RunLogStore"),
	}
}

func runLogKey(day time.Time) string {
	return "runlog:" + day.UTC().Format("2006-01-02")
}

func (s *RedisRunLogStore) AppendRunLog(ctx context.Context, log queryModel.RunLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	key := runLogKey(log.CreatedAt)
	if err = s.store.ListPush(ctx, key, data); err != nil {
		return err
	}
	return s.store.Expire(ctx, key, config.RedisRunLogWindow)
}

func (s *RedisRunLogStore) ListRunLogsSince(ctx context.Context, since time.Time) ([]queryModel.RunLog, error) {
	var logs []queryModel.RunLog

	for day := since.UTC().Truncate(24 * time.Hour); !day.After(time.Now().UTC()); day = day.Add(24 * time.Hour) {
		entries, err := s.store.ListGetAll(ctx, runLogKey(day))
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			var log queryModel.RunLog
			if err := json.Unmarshal([]byte(entry), &log); err != nil {
				s.logger.Error("Corrupt run log entry skipped", "error", err)
				continue
			}
			if log.CreatedAt.Before(since) {
				continue
			}
			logs = append(logs, log)
		}
	}
	return logs, nil
}

func TestRunLogStore(store *redisStore.Store) *RedisRunLogStore {
	return &RedisRunLogStore{
		store:  store,
		logger: logger_i.NewLogger("test runlog store"),
	}
}
