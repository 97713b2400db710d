// Package coordinator manages worker lifecycle and run aggregation.
package coordinator

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"paystorm/internal/config"
	"paystorm/internal/core"
	"paystorm/internal/ratelimit"
	"paystorm/internal/worker"
)

// Sink is where workers deliver observations. Launch polls Err during
// the run and aborts outstanding work on the first write failure, so a
// dead log file stops the run instead of dropping metrics silently.
type Sink interface {
	core.Reporter
	Err() error
}

// sinkPollInterval bounds how long workers keep loading after the sink
// latches a write error.
const sinkPollInterval = 200 * time.Millisecond

// RunSummary aggregates every worker's terminal counts.
type RunSummary struct {
	Workers   int
	Written   int
	Read      int
	Failures  int
	Cancelled int
	Elapsed   time.Duration
	PerWorker []worker.Summary
}

// Launch partitions the workload across cfg.Workers concurrent
// workers, each owning a disjoint slice of the record ID space, and
// blocks until all of them reach a terminal state. Cancelling ctx
// stops the workers between iterations; partial summaries are still
// collected.
func Launch(ctx context.Context, cfg config.Run, st worker.Store, sink Sink, counters *core.Counters) (RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return RunSummary{}, err
	}

	perWorker := cfg.RecordsPerWorker()
	logrus.WithFields(logrus.Fields{
		"workers":          cfg.Workers,
		"recordsPerWorker": perWorker,
		"mode":             cfg.Mode,
	}).Debug("launching workers")

	start := time.Now()
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	// Watch the sink for the run's duration: an unwritable log makes
	// further load pointless, so the first latched error cancels the
	// remaining work.
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		ticker := time.NewTicker(sinkPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if sink.Err() != nil {
					stop()
					return
				}
			}
		}
	}()

	summaries := make(chan worker.Summary, cfg.Workers)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() {
				// A panic is fatal to this worker only; the run
				// keeps its remaining workers and records an empty
				// summary for the dead slot.
				if r := recover(); r != nil {
					logrus.WithField("worker", idx).Errorf("worker panic: %v", r)
					summaries <- worker.Summary{Index: idx}
				}
			}()
			w := worker.New(worker.Params{
				Index:       idx,
				WorkerCount: cfg.Workers,
				Records:     perWorker,
				Mode:        cfg.Mode,
				Seed:        cfg.Seed,
				SampleRate:  cfg.SampleRate,
				Store:       st,
				Reporter:    sink,
				Limiter:     ratelimit.New(cfg.Rate),
				Counters:    counters,
			})
			summaries <- w.Run(runCtx)
		}(i)
	}

	wg.Wait()
	stop()
	<-watcherDone
	close(summaries)

	sum := RunSummary{Workers: cfg.Workers, Elapsed: time.Since(start)}
	for s := range summaries {
		sum.Written += s.Written
		sum.Read += s.Read
		sum.Failures += s.Failures
		sum.Cancelled += s.Cancelled
		sum.PerWorker = append(sum.PerWorker, s)
	}
	sort.Slice(sum.PerWorker, func(i, j int) bool {
		return sum.PerWorker[i].Index < sum.PerWorker[j].Index
	})

	if err := sink.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
