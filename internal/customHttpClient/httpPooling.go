package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/PaperRAG/internal/config"
)

//TODO: make qdrant/llm/embedder reuse connections to avoid latency

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var once sync.Once
var pooledClient *http.Client

// GetClient returns the shared connection-pooling client used for outbound
// calls (arXiv API, PDF downloads).
func GetClient() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{
			Transport: customTransport,
			Timeout:   config.ArxivHTTPTimeout,
		}
	})
	return pooledClient
}
