// Package worker implements a single injection unit: generate a
// record, write it, read it back, and time a sample of the
// operations.
package worker

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"paystorm/internal/config"
	"paystorm/internal/core"
	"paystorm/internal/ratelimit"
	"paystorm/internal/record"
	"paystorm/internal/sampler"
)

// Store is the slice of the database the worker needs. *store.Mongo
// satisfies it; tests substitute fakes.
type Store interface {
	Insert(ctx context.Context, rec record.PaymentRecord) error
	FindByID(ctx context.Context, id string) (record.PaymentRecord, error)
}

// Params configures one worker.
type Params struct {
	Index       int
	WorkerCount int
	Records     int
	Mode        config.Mode
	Seed        int64
	SampleRate  float64
	Store       Store
	Reporter    core.Reporter
	Limiter     *ratelimit.Limiter
	Counters    *core.Counters
}

// Summary is one worker's terminal accounting.
type Summary struct {
	Index     int
	Written   int
	Read      int
	Failures  int
	Cancelled int
}

// Worker runs one slice of the workload. Not safe for concurrent use;
// the coordinator gives each goroutine its own instance.
type Worker struct {
	index       int
	workerCount int
	records     int
	mode        config.Mode
	gen         *record.Generator
	rng         *rand.Rand
	store       Store
	sampler     sampler.Sampler
	rep         core.Reporter
	limiter     *ratelimit.Limiter
	counters    *core.Counters
}

// New creates a worker for the given slot. The query-mode RNG shares
// the generator's seeding scheme so query runs reproduce too.
func New(p Params) *Worker {
	return &Worker{
		index:       p.Index,
		workerCount: p.WorkerCount,
		records:     p.Records,
		mode:        p.Mode,
		gen:         record.NewGenerator(p.Index, p.Seed),
		rng:         rand.New(rand.NewSource(p.Seed + int64(p.Index))),
		store:       p.Store,
		sampler:     sampler.New(p.SampleRate),
		rep:         p.Reporter,
		limiter:     p.Limiter,
		counters:    p.Counters,
	}
}

// Run loops over this worker's record range until done or cancelled.
// Individual operation failures become FAILURE observations and the
// loop continues; only cancellation ends it early.
func (w *Worker) Run(ctx context.Context) Summary {
	sum := Summary{Index: w.index}
	for i := 0; i < w.records; i++ {
		select {
		case <-ctx.Done():
			return sum
		default:
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return sum
		}
		if w.mode == config.ModeQuery {
			w.queryOne(ctx, i, &sum)
		} else {
			w.loadOne(ctx, i, &sum)
		}
	}
	return sum
}

// loadOne writes the i-th record and reads it straight back. The
// write and read occupy adjacent operation indices so sampling covers
// both evenly. A failed write skips the read-back: the record is not
// there to read.
func (w *Worker) loadOne(ctx context.Context, i int, sum *Summary) {
	rec := w.gen.Record(i)
	if !w.do(ctx, core.OpWrite, rec.ID, 2*i, sum, func(opCtx context.Context) error {
		return w.store.Insert(opCtx, rec)
	}) {
		return
	}
	sum.Written++

	if w.do(ctx, core.OpRead, rec.ID, 2*i+1, sum, func(opCtx context.Context) error {
		_, err := w.store.FindByID(opCtx, rec.ID)
		return err
	}) {
		sum.Read++
	}
}

// queryOne reads one record chosen at random from the full key space
// written by a previous load run.
func (w *Worker) queryOne(ctx context.Context, i int, sum *Summary) {
	id := record.ID(w.rng.Intn(w.workerCount), w.rng.Intn(w.records))
	if w.do(ctx, core.OpRead, id, i, sum, func(opCtx context.Context) error {
		_, err := w.store.FindByID(opCtx, id)
		return err
	}) {
		sum.Read++
	}
}

// do executes one operation and turns its outcome into data. Sampled
// successes and every failure produce an observation, handed to the
// reporter immediately so nothing accumulates in worker memory.
func (w *Worker) do(ctx context.Context, op core.Op, id string, opIndex int, sum *Summary, fn func(context.Context) error) bool {
	sampled := w.sampler.Sample(opIndex)
	start := time.Now()
	err := fn(ctx)
	end := time.Now()

	obs := core.Observation{
		WorkerIndex: w.index,
		Op:          op,
		RecordID:    id,
		Start:       start,
		End:         end,
	}

	switch {
	case err == nil:
		w.counters.Processed.Add(1)
		if sampled {
			obs.Outcome = core.OutcomeSuccess
			w.rep.Report(obs)
		}
		return true
	case errors.Is(err, context.Canceled):
		sum.Cancelled++
		obs.Outcome = core.OutcomeCancelled
		obs.Error = "run aborted"
		w.rep.Report(obs)
		return false
	default:
		sum.Failures++
		w.counters.Processed.Add(1)
		w.counters.Failed.Add(1)
		obs.Outcome = core.OutcomeFailure
		obs.Error = err.Error()
		w.rep.Report(obs)
		return false
	}
}
