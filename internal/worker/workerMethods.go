package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akolanti/PaperRAG/internal/config"
	jobmodel "github.com/akolanti/PaperRAG/internal/domain/jobModel"
	"github.com/akolanti/PaperRAG/internal/metrics"
)

func executeJob(job jobmodel.IngestJob) {
	start := time.Now()
	defer func() {
		// Record total time at the end
		metrics.CaptureJobMetrics("ingest", time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.IngestJobTimeout)
	defer cancel()

	logger.Debug("Processing ingest job:", "documentId:", job.DocumentId, "traceId:", job.TraceId,
		"queuedFor:", time.Since(job.EnqueuedAt))

	// The document record carries the outcome, nothing to return here.
	_ragService.IngestDocument(ctx, job)
}

// retireIdleWorker gives one pool slot back unless that would drop the pool
// below the configured floor. The compare-and-swap keeps two workers idling
// out at the same moment from both counting themselves as the surplus one.
func retireIdleWorker() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			workerWaitGroup.Done()
			metrics.DecrementActiveWorkerCount()
			logger.Info("Removed worker ", "reason", "Idle worker timeout", "workerCount", count-1)
			return true
		}
	}
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}
