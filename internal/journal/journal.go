// Package journal owns the shared result log. A single goroutine has
// exclusive access to the file and serializes appends arriving from
// all workers over a channel, so concurrent entries can never
// interleave or tear regardless of worker count.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"paystorm/internal/core"
)

// channel depth bounds worker-side buffering; sends block when the
// writer falls behind rather than dropping observations.
const queueDepth = 1024

// Entry is the on-disk form of an observation: one JSON object per
// line, append-only, parseable line-by-line.
type Entry struct {
	WorkerIndex int     `json:"worker_index"`
	Operation   string  `json:"operation"`
	RecordID    string  `json:"record_id"`
	Outcome     string  `json:"outcome"`
	Error       string  `json:"error,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	LatencyMS   float64 `json:"latency_ms"`
}

// EntryFrom converts an observation into its log form.
func EntryFrom(obs core.Observation) Entry {
	return Entry{
		WorkerIndex: obs.WorkerIndex,
		Operation:   string(obs.Op),
		RecordID:    obs.RecordID,
		Outcome:     string(obs.Outcome),
		Error:       obs.Error,
		StartTime:   obs.Start.UTC().Format(timeLayout),
		EndTime:     obs.End.UTC().Format(timeLayout),
		LatencyMS:   float64(obs.Latency().Microseconds()) / 1000,
	}
}

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// AggregationError means the shared log could not be written. It is
// fatal to the run: silent metric loss is the defect this package is
// designed against.
type AggregationError struct {
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation: %v", e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// Journal appends observations to a log file through a dedicated
// writer goroutine. It implements core.Reporter; Report is safe for
// concurrent use from any number of workers.
type Journal struct {
	f    *os.File
	ch   chan core.Observation
	done chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

// Open opens (or creates) the log file in append mode and starts the
// writer goroutine. An unwritable log file is a hard error: silently
// losing metrics is the failure mode this design exists to prevent.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &AggregationError{Err: fmt.Errorf("opening journal %s: %w", path, err)}
	}
	j := &Journal{
		f:    f,
		ch:   make(chan core.Observation, queueDepth),
		done: make(chan struct{}),
	}
	go j.write()
	return j, nil
}

func (j *Journal) write() {
	defer close(j.done)
	for obs := range j.ch {
		line, err := json.Marshal(EntryFrom(obs))
		if err != nil {
			j.setErr(fmt.Errorf("encoding journal entry: %w", err))
			continue
		}
		line = append(line, '\n')
		if _, err := j.f.Write(line); err != nil {
			j.setErr(fmt.Errorf("appending journal entry: %w", err))
		}
	}
}

func (j *Journal) setErr(err error) {
	j.mu.Lock()
	if j.err == nil {
		j.err = &AggregationError{Err: err}
	}
	j.mu.Unlock()
}

// Report queues an observation for appending. Blocks if the writer is
// behind; observations are never dropped. Must not be called after
// Close.
func (j *Journal) Report(obs core.Observation) {
	j.ch <- obs
}

// Err returns the first write error seen so far, if any. The
// coordinator polls this during the run so a dead log file aborts the
// remaining work instead of silently swallowing results.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Close drains pending observations, syncs the file and returns the
// first error encountered over the journal's lifetime.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return j.err
	}
	j.closed = true
	j.mu.Unlock()

	close(j.ch)
	<-j.done

	if err := j.f.Sync(); err != nil {
		j.setErr(fmt.Errorf("syncing journal: %w", err))
	}
	if err := j.f.Close(); err != nil {
		j.setErr(fmt.Errorf("closing journal: %w", err))
	}
	return j.Err()
}
