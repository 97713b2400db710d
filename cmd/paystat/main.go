// paystat summarizes a paystorm result log: operation counts, success
// rate and latency percentiles, computed offline from the JSONL file.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"paystorm/internal/journal"
)

func main() {
	logPath := flag.String("log", "processing-output.log", "result log file to analyze")
	flag.Parse()
	if flag.NArg() > 0 {
		*logPath = flag.Arg(0)
	}

	stats, err := journal.ScanFile(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printStats(os.Stdout, *logPath, stats)
}

func printStats(w *os.File, path string, s *journal.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "paystorm - Result Log Summary (%s)\n", path)
	fmt.Fprintln(w, "====================================")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Observations: %d\n", s.Total)
	fmt.Fprintf(w, "Success Rate: %.1f%% (%d / %d)\n", s.SuccessRate(), s.Success, s.Total)
	fmt.Fprintf(w, "Failures:     %d\n", s.Failure)
	if s.Cancelled > 0 {
		fmt.Fprintf(w, "Cancelled:    %d\n", s.Cancelled)
	}

	ops := make([]string, 0, len(s.Ops))
	for op := range s.Ops {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	for _, op := range ops {
		o := s.Ops[op]
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s (%d ops, %d failed):\n", op, o.Count, o.Failure)
		fmt.Fprintf(w, "  Min:    %s\n", formatDuration(o.Latency.Min))
		fmt.Fprintf(w, "  Avg:    %s\n", formatDuration(o.Latency.Avg))
		fmt.Fprintf(w, "  P50:    %s\n", formatDuration(o.Latency.P50))
		fmt.Fprintf(w, "  P90:    %s\n", formatDuration(o.Latency.P90))
		fmt.Fprintf(w, "  P95:    %s\n", formatDuration(o.Latency.P95))
		fmt.Fprintf(w, "  P99:    %s\n", formatDuration(o.Latency.P99))
		fmt.Fprintf(w, "  Max:    %s\n", formatDuration(o.Latency.Max))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return d.Round(10 * time.Microsecond).String()
}
