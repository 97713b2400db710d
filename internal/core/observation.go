// Package core defines the fundamental types shared by workers, the
// coordinator and the journal.
package core

import "time"

// Op identifies the database operation an observation measured.
type Op string

const (
	OpWrite Op = "write"
	OpRead  Op = "read"
)

// Outcome is the terminal state of a single operation.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
)

// Observation is a timed record of one write or read operation.
// It is created by a worker at the moment the operation completes
// and never mutated afterwards.
type Observation struct {
	WorkerIndex int
	Op          Op
	RecordID    string
	Outcome     Outcome
	Error       string
	Start       time.Time
	End         time.Time
}

// Latency returns the elapsed time of the observed operation.
func (o Observation) Latency() time.Duration {
	return o.End.Sub(o.Start)
}

// Reporter is the interface workers use to hand observations to the
// journal. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(Observation)
}
