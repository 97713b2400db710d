package journal

import (
	"sort"
	"time"
)

// Stats summarizes a scanned journal.
type Stats struct {
	Total     int
	Success   int
	Failure   int
	Cancelled int
	Ops       map[string]*OpStats
}

// OpStats summarizes one operation kind (write or read).
type OpStats struct {
	Count     int
	Success   int
	Failure   int
	Latency   LatencyStats
	latencies []time.Duration
}

// LatencyStats contains latency statistics for one operation kind.
type LatencyStats struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
	P50 time.Duration
	P90 time.Duration
	P95 time.Duration
	P99 time.Duration
}

// Percentile calculates the percentile value from a sorted slice of
// latencies using the nearest-rank method. p is in (0, 1), e.g. 0.95.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

// ComputeLatencyStats calculates all latency statistics from a slice
// of latencies.
func ComputeLatencyStats(latencies []time.Duration) LatencyStats {
	if len(latencies) == 0 {
		return LatencyStats{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return LatencyStats{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: total / time.Duration(len(sorted)),
		P50: Percentile(sorted, 0.50),
		P90: Percentile(sorted, 0.90),
		P95: Percentile(sorted, 0.95),
		P99: Percentile(sorted, 0.99),
	}
}

// SuccessRate returns the percentage of successful operations.
func (s *Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}
