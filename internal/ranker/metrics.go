package ranker

import (
	"sync"
	"time"
)

// Metrics holds process-wide ranker counters: total rankings, total
// duplicates removed, per-algorithm use and mean latency. Reads and writes
// are serialized by a mutex; the read path is cheap enough that lock-free
// counters would add complexity without a measurable benefit here.
type Metrics struct {
	mu sync.Mutex

	totalRankings     uint64
	totalDuplicates   uint64
	perAlgorithmCount map[Algorithm]uint64
	perAlgorithmNanos map[Algorithm]int64
}

// NewMetrics returns an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		perAlgorithmCount: make(map[Algorithm]uint64),
		perAlgorithmNanos: make(map[Algorithm]int64),
	}
}

func (m *Metrics) record(algo Algorithm, duplicates int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRankings++
	m.totalDuplicates += uint64(duplicates)
	m.perAlgorithmCount[algo]++
	m.perAlgorithmNanos[algo] += elapsed.Nanoseconds()
}

// Snapshot is a point-in-time, read-only copy of Metrics.
type Snapshot struct {
	TotalRankings       uint64
	TotalDuplicatesRemoved uint64
	PerAlgorithmCount   map[Algorithm]uint64
	PerAlgorithmMeanLatency map[Algorithm]time.Duration
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[Algorithm]uint64, len(m.perAlgorithmCount))
	means := make(map[Algorithm]time.Duration, len(m.perAlgorithmCount))
	for algo, n := range m.perAlgorithmCount {
		counts[algo] = n
		if n > 0 {
			means[algo] = time.Duration(m.perAlgorithmNanos[algo] / int64(n))
		}
	}

	return Snapshot{
		TotalRankings:           m.totalRankings,
		TotalDuplicatesRemoved:  m.totalDuplicates,
		PerAlgorithmCount:       counts,
		PerAlgorithmMeanLatency: means,
	}
}
