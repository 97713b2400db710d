// Package record generates synthetic payment records with
// collision-free identities across independent workers.
package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is one synthetic payment. Immutable after creation;
// the amount carries fixed-point decimal semantics so repeated
// serialization never drifts.
type PaymentRecord struct {
	ID            string
	Timestamp     time.Time
	Reason        string
	PayerName     string
	PayerSortCode string
	PayerAccNum   string
	PayeeName     string
	PayeeSortCode string
	PayeeAccNum   string
	Amount        decimal.Decimal
	Currency      string
	Status        string
}
