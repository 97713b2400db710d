package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"paystorm/internal/config"
	"paystorm/internal/core"
	"paystorm/internal/record"
)

// fakeStore is an in-memory Store with per-ID failure hooks.
type fakeStore struct {
	mu        sync.Mutex
	records   map[string]record.PaymentRecord
	insertErr func(id string) error
	findErr   func(id string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]record.PaymentRecord)}
}

func (s *fakeStore) Insert(_ context.Context, rec record.PaymentRecord) error {
	if s.insertErr != nil {
		if err := s.insertErr(rec.ID); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (record.PaymentRecord, error) {
	if s.findErr != nil {
		if err := s.findErr(id); err != nil {
			return record.PaymentRecord{}, err
		}
	}
	s.mu.Lock()
	rec, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return record.PaymentRecord{}, &core.OpError{Kind: core.ErrUnknown, Err: fmt.Errorf("record %s not found", id)}
	}
	return rec, nil
}

// memReporter collects observations in memory.
type memReporter struct {
	mu  sync.Mutex
	obs []core.Observation
}

func (r *memReporter) Report(o core.Observation) {
	r.mu.Lock()
	r.obs = append(r.obs, o)
	r.mu.Unlock()
}

func (r *memReporter) all() []core.Observation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Observation, len(r.obs))
	copy(out, r.obs)
	return out
}

func newWorker(st Store, rep core.Reporter, records int) *Worker {
	return New(Params{
		Index:       0,
		WorkerCount: 1,
		Records:     records,
		Mode:        config.ModeLoad,
		Seed:        1,
		SampleRate:  1.0,
		Store:       st,
		Reporter:    rep,
		Counters:    &core.Counters{},
	})
}

func TestWorker_WritesAndReadsBackEveryRecord(t *testing.T) {
	st := newFakeStore()
	rep := &memReporter{}
	sum := newWorker(st, rep, 10).Run(context.Background())

	if sum.Written != 10 || sum.Read != 10 || sum.Failures != 0 || sum.Cancelled != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(st.records) != 10 {
		t.Errorf("store has %d records, want 10", len(st.records))
	}
	obs := rep.all()
	if len(obs) != 20 {
		t.Fatalf("expected 20 observations at sample rate 1.0, got %d", len(obs))
	}
	for _, o := range obs {
		if o.Outcome != core.OutcomeSuccess {
			t.Errorf("unexpected outcome %s for %s %s", o.Outcome, o.Op, o.RecordID)
		}
	}
}

func TestWorker_WritePrecedesItsReadBack(t *testing.T) {
	st := newFakeStore()
	rep := &memReporter{}
	// FindByID fails for anything not yet inserted, so a read racing
	// ahead of its write would surface as a failure here.
	sum := newWorker(st, rep, 50).Run(context.Background())
	if sum.Failures != 0 {
		t.Fatalf("read-back failed %d times: writes must precede reads", sum.Failures)
	}
}

func TestWorker_OperationFailureDoesNotAbortRun(t *testing.T) {
	st := newFakeStore()
	st.insertErr = func(id string) error {
		if id == "0_3" {
			return &core.OpError{Kind: core.ErrTimeout, Err: errors.New("server selection timeout")}
		}
		return nil
	}
	rep := &memReporter{}
	sum := newWorker(st, rep, 10).Run(context.Background())

	if sum.Written != 9 || sum.Read != 9 {
		t.Errorf("summary written/read = %d/%d, want 9/9", sum.Written, sum.Read)
	}
	if sum.Failures != 1 {
		t.Errorf("failures = %d, want 1", sum.Failures)
	}

	var failed *core.Observation
	obs := rep.all()
	for i := range obs {
		if obs[i].Outcome == core.OutcomeFailure {
			failed = &obs[i]
			break
		}
	}
	if failed == nil {
		t.Fatal("no FAILURE observation recorded")
	}
	if failed.Op != core.OpWrite || failed.RecordID != "0_3" {
		t.Errorf("failure recorded for %s %s, want write 0_3", failed.Op, failed.RecordID)
	}
	if !strings.Contains(failed.Error, "timeout") {
		t.Errorf("failure error %q does not carry the timeout classification", failed.Error)
	}
}

func TestWorker_FailedWriteSkipsReadBack(t *testing.T) {
	st := newFakeStore()
	st.insertErr = func(id string) error {
		if id == "0_0" {
			return &core.OpError{Kind: core.ErrNetwork, Err: errors.New("connection reset")}
		}
		return nil
	}
	rep := &memReporter{}
	newWorker(st, rep, 3).Run(context.Background())

	for _, o := range rep.all() {
		if o.Op == core.OpRead && o.RecordID == "0_0" {
			t.Error("read-back attempted for a record whose write failed")
		}
	}
}

func TestWorker_CancellationRecordedNotDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := newFakeStore()
	st.insertErr = func(id string) error {
		if id == "0_5" {
			cancel()
			return context.Canceled
		}
		return nil
	}
	rep := &memReporter{}
	sum := newWorker(st, rep, 10).Run(ctx)

	if sum.Written != 5 {
		t.Errorf("written = %d, want 5 before cancellation", sum.Written)
	}
	if sum.Cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", sum.Cancelled)
	}

	found := false
	for _, o := range rep.all() {
		if o.Outcome == core.OutcomeCancelled {
			found = true
			if o.RecordID != "0_5" {
				t.Errorf("cancelled observation for %s, want 0_5", o.RecordID)
			}
		}
	}
	if !found {
		t.Error("in-flight cancelled operation left no observation")
	}
}

func TestWorker_SamplingLimitsObservations(t *testing.T) {
	st := newFakeStore()
	rep := &memReporter{}
	w := New(Params{
		Index:       0,
		WorkerCount: 1,
		Records:     100,
		Mode:        config.ModeLoad,
		Seed:        1,
		SampleRate:  0.1,
		Store:       st,
		Reporter:    rep,
		Counters:    &core.Counters{},
	})
	sum := w.Run(context.Background())

	if sum.Written != 100 || sum.Read != 100 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	// 200 operations at stride 10 -> 20 timed.
	if got := len(rep.all()); got != 20 {
		t.Errorf("observations = %d, want 20", got)
	}
}

func TestWorker_QueryModeStaysInKeySpace(t *testing.T) {
	st := newFakeStore()
	for w := 0; w < 2; w++ {
		for i := 0; i < 10; i++ {
			id := record.ID(w, i)
			st.records[id] = record.PaymentRecord{ID: id}
		}
	}
	rep := &memReporter{}
	w := New(Params{
		Index:       1,
		WorkerCount: 2,
		Records:     10,
		Mode:        config.ModeQuery,
		Seed:        1,
		SampleRate:  1.0,
		Store:       st,
		Reporter:    rep,
		Counters:    &core.Counters{},
	})
	sum := w.Run(context.Background())

	if sum.Read != 10 || sum.Written != 0 || sum.Failures != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	for _, o := range rep.all() {
		if o.Op != core.OpRead {
			t.Errorf("query mode issued a %s", o.Op)
		}
	}
}
