package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to the in-memory stores
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	NoAuthBypass                    = true //dev default - set PAPERRAG_AUTH_TOKEN and flip this off for prod

	//chunking - overlapping windows over page text, metadata preserved per window
	ChunkTargetSize   = 1000 //characters
	ChunkOverlap      = 200
	TitleMaxLines     = 3
	TextPreviewLength = 100 //chars of chunk text kept per RunLog entry

	DefaultSessionName = "Default Session"

	//retrieval
	DefaultRetrievalK   = 5
	HighlightRetrievalK = 2 //priority annotation context per query
	OverviewAbstractK   = 5 //about-this-paper route, section=abstract stage
	OverviewBodyK       = 4 //about-this-paper route, section=body stage
	CompareRetrievalK   = 10
	LitReviewRetrievalK = 15

	RefusalAnswer      = "I cannot answer this question based on the selected document(s)."
	SessionLockStripes = 32 //striped per-session write lock over the index

	EmbeddingOutputDimensionality int32 = 1536
	SessionCollectionPrefix             = "session-" //one qdrant collection per session

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	IngestJobTimeout                = 5 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//ingest requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantKeepAliveTimeout  = 30 * time.Second

	//llm
	LLMProvider     = "gemini" //or "openai"
	GeminiModelName = "gemini-2.5-flash-lite-preview-09-2025"
	OpenAIModelName = "gpt-4o-mini"

	//embeddings
	EmbeddingProvider    = "google" //or "openai"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature float32 = 0.2

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//arxiv
	ArxivAPIBase       = "http://export.arxiv.org/api/query"
	ArxivMaxResultsCap = 50
	ArxivHTTPTimeout   = 30 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore  = 0
	RedisSessionStore   = 1
	RedisRunLogStore    = 2
	RedisHighlightStore = 3

	//redis TTLs
	RedisDocumentStoreTTL time.Duration = 0 //documents and sessions do not expire
	RedisRunLogWindow                   = 30 * 24 * time.Hour

	//metrics summary defaults
	SummaryDefaultDays = 7
)

func GoogleAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AuthToken() string {
	return os.Getenv("PAPERRAG_AUTH_TOKEN")
}
