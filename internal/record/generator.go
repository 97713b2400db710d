package record

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// Seed lists for generated field values.
var (
	paymentReasons = []string{"pay bill", "repayment", "owed money", "temp loan", "buy goods"}
	firstNames     = []string{"Suzi", "Bobby", "Gertrude", "Gordon", "Mandy", "Sandy", "Randy", "Candy", "Bambi"}
	lastNames      = []string{"Brown", "Jones", "Roberts", "McDonald", "Barrett", "Saunders", "Reid",
		"Whittington-Smythe", "Parker-Tweed"}
)

// Generator produces records for a single worker. Record identity is a
// pure function of (workerIndex, sequence) so no two workers can ever
// collide without any runtime coordination. Field values come from a
// private PRNG seeded per worker, making runs reproducible for a fixed
// seed and worker count.
//
// A Generator is NOT safe for concurrent use; each worker goroutine
// must own its own instance.
type Generator struct {
	workerIndex int
	rng         *rand.Rand
}

// NewGenerator creates a generator for one worker. The effective seed
// is offset by the worker index so workers draw distinct but
// reproducible streams.
func NewGenerator(workerIndex int, seed int64) *Generator {
	return &Generator{
		workerIndex: workerIndex,
		rng:         rand.New(rand.NewSource(seed + int64(workerIndex))),
	}
}

// ID returns the identity a worker assigns to its seq-th record.
// Exposed so read-only passes can address records without
// regenerating them.
func ID(workerIndex, seq int) string {
	return fmt.Sprintf("%d_%d", workerIndex, seq)
}

// Record generates the seq-th record for this worker. seq must be
// strictly increasing from 0; the caller owns that discipline.
func (g *Generator) Record(seq int) PaymentRecord {
	return PaymentRecord{
		ID:            ID(g.workerIndex, seq),
		Timestamp:     time.Now().UTC(),
		Reason:        paymentReasons[g.rng.Intn(len(paymentReasons))],
		PayerName:     g.fullName(),
		PayerSortCode: g.sortCode(),
		PayerAccNum:   g.accountNumber(),
		PayeeName:     g.fullName(),
		PayeeSortCode: g.sortCode(),
		PayeeAccNum:   g.accountNumber(),
		Amount:        decimal.New(int64(g.rng.Intn(9999899)+100), -2),
		Currency:      "GBP",
		Status:        "pending",
	}
}

func (g *Generator) fullName() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

func (g *Generator) sortCode() string {
	return fmt.Sprintf("%06d", g.rng.Intn(888889)+111111)
}

func (g *Generator) accountNumber() string {
	return fmt.Sprintf("%09d", g.rng.Intn(888888889)+111111111)
}
