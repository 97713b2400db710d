package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"paystorm/internal/core"
)

func testObservation(workerIndex, seq int) core.Observation {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return core.Observation{
		WorkerIndex: workerIndex,
		Op:          core.OpWrite,
		RecordID:    fmt.Sprintf("%d_%d", workerIndex, seq),
		Outcome:     core.OutcomeSuccess,
		Start:       start,
		End:         start.Add(3 * time.Millisecond),
	}
}

func TestJournal_ConcurrentAppendsNeverInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.log")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	const workers = 8
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				j.Report(testObservation(idx, i))
			}
		}(w)
	}
	wg.Wait()

	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		t.Error("log does not end with a newline")
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != workers*perWorker {
		t.Fatalf("expected %d entries, got %d", workers*perWorker, len(lines))
	}

	perIndex := make(map[int]int)
	for n, line := range lines {
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("line %d is not a complete JSON entry: %v\n%s", n+1, err, line)
		}
		if e.Operation != string(core.OpWrite) || e.Outcome != string(core.OutcomeSuccess) {
			t.Fatalf("line %d has corrupted fields: %+v", n+1, e)
		}
		perIndex[e.WorkerIndex]++
	}
	for w := 0; w < workers; w++ {
		if perIndex[w] != perWorker {
			t.Errorf("worker %d has %d entries, want %d", w, perIndex[w], perWorker)
		}
	}
}

func TestJournal_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.log")

	for run := 0; run < 2; run++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open run %d: %v", run, err)
		}
		j.Report(testObservation(0, run))
		if err := j.Close(); err != nil {
			t.Fatalf("Close run %d: %v", run, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("expected 2 entries after two runs, got %d", got)
	}
}

func TestJournal_UnwritablePathIsHardError(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "results.log"))
	if err == nil {
		t.Fatal("Open succeeded on unwritable path")
	}
	if _, ok := err.(*AggregationError); !ok {
		t.Errorf("error %v is not an AggregationError", err)
	}
}

func TestEntryFrom_Fields(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	obs := core.Observation{
		WorkerIndex: 3,
		Op:          core.OpRead,
		RecordID:    "3_9",
		Outcome:     core.OutcomeFailure,
		Error:       "timeout: server selection error",
		Start:       start,
		End:         start.Add(1500 * time.Microsecond),
	}

	e := EntryFrom(obs)
	if e.WorkerIndex != 3 || e.Operation != "read" || e.RecordID != "3_9" {
		t.Errorf("unexpected identity fields: %+v", e)
	}
	if e.Outcome != "failure" || e.Error == "" {
		t.Errorf("unexpected outcome fields: %+v", e)
	}
	if e.LatencyMS != 1.5 {
		t.Errorf("latency_ms = %v, want 1.5", e.LatencyMS)
	}
	if e.StartTime == "" || e.EndTime == "" {
		t.Errorf("timestamps missing: %+v", e)
	}
}
