package journal

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"paystorm/internal/core"
)

// ScanFile reads a journal file line-by-line and aggregates it into
// Stats. Malformed lines fail the scan rather than being skipped: a
// torn entry means the writer discipline was violated somewhere, and
// that is worth surfacing.
func ScanFile(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	stats := &Stats{Ops: make(map[string]*OpStats)}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !gjson.Valid(line) {
			return nil, fmt.Errorf("journal %s line %d: invalid JSON entry", path, lineNo)
		}
		op := gjson.Get(line, "operation").String()
		outcome := gjson.Get(line, "outcome").String()
		if op == "" || outcome == "" {
			return nil, fmt.Errorf("journal %s line %d: missing operation or outcome", path, lineNo)
		}
		latency := time.Duration(gjson.Get(line, "latency_ms").Float() * float64(time.Millisecond))

		stats.Total++
		opStats, ok := stats.Ops[op]
		if !ok {
			opStats = &OpStats{}
			stats.Ops[op] = opStats
		}
		opStats.Count++
		switch core.Outcome(outcome) {
		case core.OutcomeSuccess:
			stats.Success++
			opStats.Success++
			opStats.latencies = append(opStats.latencies, latency)
		case core.OutcomeCancelled:
			stats.Cancelled++
		default:
			stats.Failure++
			opStats.Failure++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}

	for _, opStats := range stats.Ops {
		opStats.Latency = ComputeLatencyStats(opStats.latencies)
	}
	return stats, nil
}
