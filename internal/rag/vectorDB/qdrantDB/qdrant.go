package qdrantDB

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/commonModels"
	"github.com/akolanti/PaperRAG/internal/rag/embedding"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

// ClientHolder implements vectorDB.SessionIndex over one qdrant collection
// per session. The embedder turns query/chunk text into vectors at the edge
// so the rest of the system only ever deals in text.
type ClientHolder struct {
	QObj     *qdrant.Client
	embedder embedding.Embedder

	// striped per-session write lock: concurrent ingests into the same
	// session are serialized here, reads stay lock-free
	writeLocks [config.SessionLockStripes]sync.Mutex
}

func GetQuadrantClient(ctx context.Context, embedder embedding.Embedder) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient()
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})

	if quadrantInstance == nil || embedder == nil {
		return nil
	}
	return &ClientHolder{
		QObj:     quadrantInstance,
		embedder: embedder,
	}
}

func newClient() *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
}

// collectionName maps a session name onto a qdrant-safe collection name.
func collectionName(session string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, session)
	return config.SessionCollectionPrefix + sanitized
}

func (db *ClientHolder) sessionLock(session string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(session))
	return &db.writeLocks[h.Sum32()%config.SessionLockStripes]
}

func (db *ClientHolder) Add(ctx context.Context, session string, chunks []commonModels.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := db.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	collection := collectionName(session)

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":  chunk.Text,
				"source":   chunk.Source,
				"page":     chunk.Page,
				"section":  string(chunk.Section),
				"type":     string(chunk.Type),
				"chunk_id": chunk.Id,
			}),
		}
	}

	lock := db.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	// Inside the lock so two first-time ingests into a fresh session cannot
	// both race to create the collection.
	if err := db.ensureCollection(ctx, collection); err != nil {
		return err
	}

	_, err = db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, session string, query string, k int, filter commonModels.SearchFilter) ([]commonModels.ScoredChunk, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	vector, err := db.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName(session),
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		if isMissingCollection(err) {
			// fresh or dropped session, no collection yet: that is just an
			// empty retrieval, not a failure
			loggr.Debug("No collection for session", "session", session)
			return []commonModels.ScoredChunk{}, nil
		}
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	chunks := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		chunks = append(chunks, commonModels.ScoredChunk{
			Chunk: commonModels.Chunk{
				Id:      hit.Payload["chunk_id"].GetStringValue(),
				Text:    hit.Payload["content"].GetStringValue(),
				Source:  hit.Payload["source"].GetStringValue(),
				Page:    int(hit.Payload["page"].GetIntegerValue()),
				Section: commonModels.Section(hit.Payload["section"].GetStringValue()),
				Type:    commonModels.ChunkType(hit.Payload["type"].GetStringValue()),
			},
			Score: hit.Score,
		})
	}
	return chunks, nil
}

func (db *ClientHolder) Delete(ctx context.Context, session string, filter commonModels.DeleteFilter) error {
	lock := db.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()

	var selector *qdrant.PointsSelector
	switch {
	case len(filter.Ids) > 0:
		ids := make([]*qdrant.PointId, len(filter.Ids))
		for i, id := range filter.Ids {
			ids[i] = qdrant.NewID(id)
		}
		selector = qdrant.NewPointsSelector(ids...)
	case filter.Source != "":
		selector = qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("source", filter.Source)},
		})
	default:
		return fmt.Errorf("empty delete filter for session %s", session)
	}

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName(session),
		Points:         selector,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) DropSession(ctx context.Context, session string) error {
	lock := db.sessionLock(session)
	lock.Lock()
	defer lock.Unlock()
	return db.QObj.DeleteCollection(ctx, collectionName(session))
}

func buildFilter(filter commonModels.SearchFilter) *qdrant.Filter {
	var must, mustNot []*qdrant.Condition

	if len(filter.Sources) > 0 {
		must = append(must, qdrant.NewMatchKeywords("source", filter.Sources...))
	}
	if filter.Section != "" {
		must = append(must, qdrant.NewMatch("section", string(filter.Section)))
	}
	if filter.Type != "" {
		must = append(must, qdrant.NewMatch("type", string(filter.Type)))
	}
	if filter.ExcludeType != "" {
		mustNot = append(mustNot, qdrant.NewMatch("type", string(filter.ExcludeType)))
	}

	if len(must) == 0 && len(mustNot) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must, MustNot: mustNot}
}

func (db *ClientHolder) ensureCollection(ctx context.Context, collection string) error {
	exists, err := db.QObj.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if isCollectionConflict(err) {
		//another writer won the race, the collection is there either way
		return nil
	}
	return err
}

// isMissingCollection recognizes a query against a session that has no
// collection yet. That reads as an empty index, never as an outage.
func isMissingCollection(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isCollectionConflict(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
