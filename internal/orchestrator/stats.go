package orchestrator

import (
	"sync/atomic"
	"time"

	"github.com/certogo-tech/searchproxy/internal/ranker"
)

// stats holds the orchestrator's own process-wide counters, separate from
// the Query Processor, Search Executor, and Ranker's own metrics.
type stats struct {
	searches     atomic.Uint64
	batches      atomic.Uint64
	batchQueries atomic.Uint64
	searchNanos  atomic.Int64
}

func (s *stats) recordSearch(elapsed time.Duration) {
	s.searches.Add(1)
	s.searchNanos.Add(elapsed.Nanoseconds())
}

func (s *stats) recordBatch(queries int, _ time.Duration) {
	s.batches.Add(1)
	s.batchQueries.Add(uint64(queries))
}

// OrchestratorStats aggregates counters across the pipeline for diagnostics
// and the health/status surface.
type OrchestratorStats struct {
	TotalSearches         uint64
	TotalBatchSearches    uint64
	TotalQueriesInBatches uint64
	Ranker                ranker.Snapshot
}
