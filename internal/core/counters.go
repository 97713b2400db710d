package core

import "sync/atomic"

// Counters are live run totals updated by workers and read by the
// progress reporter. All fields are independent atomics; readers see
// a near-consistent snapshot, which is all the progress line needs.
type Counters struct {
	Processed atomic.Int64
	Failed    atomic.Int64
}
