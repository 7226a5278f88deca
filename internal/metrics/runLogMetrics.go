package metrics

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/domain/queryModel"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Metrics ")

var queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rag_queries_total",
	Help: "Total RAG queries labelled by mode and outcome",
}, []string{"mode", "outcome"})

var queryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "rag_query_duration_seconds",
	Help:    "End-to-end RAG query latency.",
	Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"mode"})

// Recorder writes one RunLog per query attempt and mirrors the outcome into
// the prometheus registry.
type Recorder struct {
	Logs queryModel.RunLogStore
}

func NewRecorder(logs queryModel.RunLogStore) *Recorder {
	return &Recorder{Logs: logs}
}

// LogQuery stamps and persists the run log. queryErr carries the failure of
// the query itself; a nil queryErr records a success. Persistence problems
// are logged and swallowed, metrics never fail a query.
func (r *Recorder) LogQuery(ctx context.Context, log queryModel.RunLog, queryErr error) {
	if queryErr != nil {
		var qe *queryModel.QueryError
		if errors.As(queryErr, &qe) {
			log.ErrorType = qe.Kind
		} else {
			log.ErrorType = queryModel.ErrorKindInternal
		}
		log.ErrorMessage = queryErr.Error()
	}
	log.CreatedAt = time.Now().UTC()

	outcome := "success"
	if log.ErrorType != "" {
		outcome = log.ErrorType
	}
	queriesTotal.WithLabelValues(string(log.Mode), outcome).Inc()
	queryLatency.WithLabelValues(string(log.Mode)).Observe(float64(log.LatencyMs) / 1000)

	if err := r.Logs.AppendRunLog(ctx, log); err != nil {
		logger.Error("Could not persist run log", "error", err)
		return
	}
	logger.Info("Logged query", "mode", log.Mode, "session", log.Session,
		"latencyMs", log.LatencyMs, "chunks", len(log.RetrievedChunks), "errorType", log.ErrorType)
}

//summary shapes, rendered straight to the dashboard ------------------

type PeriodSummary struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type QuerySummary struct {
	Total      int            `json:"total"`
	ByMode     map[string]int `json:"by_mode"`
	LatencyAvg int64          `json:"latency_avg"`
	LatencyP50 int64          `json:"latency_p50"`
	LatencyP95 int64          `json:"latency_p95"`
}

type ErrorCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type ErrorSummary struct {
	Count     int          `json:"count"`
	Rate      float64      `json:"rate"`
	TopErrors []ErrorCount `json:"top_errors"`
}

type RetrievalSummary struct {
	AvgChunksPerQuery float64 `json:"avg_chunks_per_query"`
	AvgScore          float64 `json:"avg_score"`
}

type SessionSummary struct {
	ActiveCount int `json:"active_count"`
}

type Summary struct {
	Period    PeriodSummary    `json:"period"`
	Queries   QuerySummary     `json:"queries"`
	Errors    ErrorSummary     `json:"errors"`
	Retrieval RetrievalSummary `json:"retrieval"`
	Sessions  SessionSummary   `json:"sessions"`
}

// GetSummary aggregates the run logs of the last sinceDays days. A window
// with no traffic comes back zeroed, not as an error.
func (r *Recorder) GetSummary(ctx context.Context, sinceDays int) (Summary, error) {
	if sinceDays <= 0 {
		sinceDays = config.SummaryDefaultDays
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(sinceDays) * 24 * time.Hour)

	summary := Summary{
		Period: PeriodSummary{
			Start: since.Format(time.RFC3339),
			End:   now.Format(time.RFC3339),
			Days:  sinceDays,
		},
		Queries: QuerySummary{ByMode: map[string]int{}},
		Errors:  ErrorSummary{TopErrors: []ErrorCount{}},
	}

	logs, err := r.Logs.ListRunLogsSince(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	if len(logs) == 0 {
		return summary, nil
	}

	total := len(logs)
	summary.Queries.Total = total

	latencies := make([]int64, 0, total)
	errorCounts := map[string]int{}
	totalChunks := 0
	var scoreSum float64
	scoreCount := 0
	sessions := map[string]struct{}{}

	for _, log := range logs {
		summary.Queries.ByMode[string(log.Mode)]++
		latencies = append(latencies, log.LatencyMs)
		if log.ErrorType != "" {
			errorCounts[log.ErrorType]++
		}
		totalChunks += len(log.RetrievedChunks)
		for _, chunk := range log.RetrievedChunks {
			scoreSum += float64(chunk.Score)
			scoreCount++
		}
		sessions[log.Session] = struct{}{}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var latencySum int64
	for _, l := range latencies {
		latencySum += l
	}
	summary.Queries.LatencyAvg = latencySum / int64(total)
	summary.Queries.LatencyP50 = percentile(latencies, 50)
	summary.Queries.LatencyP95 = percentile(latencies, 95)

	errorTotal := 0
	for errType, count := range errorCounts {
		errorTotal += count
		summary.Errors.TopErrors = append(summary.Errors.TopErrors, ErrorCount{Type: errType, Count: count})
	}
	sort.Slice(summary.Errors.TopErrors, func(i, j int) bool {
		a, b := summary.Errors.TopErrors[i], summary.Errors.TopErrors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Type < b.Type
	})
	if len(summary.Errors.TopErrors) > 5 {
		summary.Errors.TopErrors = summary.Errors.TopErrors[:5]
	}
	summary.Errors.Count = errorTotal
	summary.Errors.Rate = roundTo(float64(errorTotal)/float64(total), 3)

	summary.Retrieval.AvgChunksPerQuery = roundTo(float64(totalChunks)/float64(total), 1)
	if scoreCount > 0 {
		summary.Retrieval.AvgScore = roundTo(scoreSum/float64(scoreCount), 3)
	}
	summary.Sessions.ActiveCount = len(sessions)

	return summary, nil
}

// percentile interpolates linearly between the two nearest ranks of an
// ascending-sorted sample.
func percentile(sorted []int64, p int) int64 {
	if len(sorted) == 0 {
		return 0
	}

	index := float64(len(sorted)-1) * float64(p) / 100
	floor := int(index)
	ceil := floor + 1
	if ceil >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	fraction := index - float64(floor)
	return sorted[floor] + int64(fraction*float64(sorted[ceil]-sorted[floor]))
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
