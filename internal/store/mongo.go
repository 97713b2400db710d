// Package store wraps the MongoDB client behind the minimal surface
// the workers need. Concerns are fixed on the client at connect time;
// every operation runs under a bounded timeout so a stuck call can
// never stall a worker indefinitely.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"paystorm/internal/core"
	"paystorm/internal/record"
)

// DefaultOpTimeout bounds each individual write and read.
const DefaultOpTimeout = 2 * time.Second

// Config carries everything needed to reach the collection under test.
type Config struct {
	URI          string
	Database     string
	Collection   string
	WriteConcern *writeconcern.WriteConcern
	ReadConcern  *readconcern.ReadConcern
	OpTimeout    time.Duration
}

// Mongo is a Store backed by a single shared client. The driver's
// client is safe for concurrent use and pools connections internally,
// so all workers share one instance.
type Mongo struct {
	client    *mongo.Client
	coll      *mongo.Collection
	opTimeout time.Duration
}

// Connect dials the endpoint, verifies it is reachable and returns a
// store bound to the configured collection.
func Connect(ctx context.Context, cfg Config) (*Mongo, error) {
	timeout := cfg.OpTimeout
	if timeout <= 0 {
		timeout = DefaultOpTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetWriteConcern(cfg.WriteConcern).
		SetReadConcern(cfg.ReadConcern).
		SetReadPreference(readpref.Primary()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.URI, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("endpoint %s unreachable: %w", cfg.URI, err)
	}

	logrus.WithFields(logrus.Fields{
		"database":   cfg.Database,
		"collection": cfg.Collection,
	}).Debug("connected to database")

	return &Mongo{
		client:    client,
		coll:      client.Database(cfg.Database).Collection(cfg.Collection),
		opTimeout: timeout,
	}, nil
}

// Insert writes one payment record under the client's write concern.
func (m *Mongo) Insert(ctx context.Context, rec record.PaymentRecord) error {
	opCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	if _, err := m.coll.InsertOne(opCtx, toDoc(rec)); err != nil {
		return classify(err)
	}
	return nil
}

// FindByID point-reads one record under the client's read concern.
func (m *Mongo) FindByID(ctx context.Context, id string) (record.PaymentRecord, error) {
	opCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	var doc paymentDoc
	if err := m.coll.FindOne(opCtx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return record.PaymentRecord{}, classify(err)
	}
	return fromDoc(doc)
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// classify maps driver errors onto the operation error taxonomy.
// Run-level cancellation passes through untouched so workers can tell
// an aborted run apart from an operation failure.
func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err):
		return &core.OpError{Kind: core.ErrTimeout, Err: err}
	case mongo.IsNetworkError(err):
		return &core.OpError{Kind: core.ErrNetwork, Err: err}
	case isConcernError(err):
		return &core.OpError{Kind: core.ErrConcern, Err: err}
	default:
		return &core.OpError{Kind: core.ErrUnknown, Err: err}
	}
}

func isConcernError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) && we.WriteConcernError != nil {
		return true
	}
	var bwe mongo.BulkWriteException
	return errors.As(err, &bwe) && bwe.WriteConcernError != nil
}

// paymentDoc is the BSON shape of a payment record. The amount is
// stored as a string so its decimal value survives the round trip
// without floating-point drift.
type paymentDoc struct {
	ID            string    `bson:"_id"`
	Timestamp     time.Time `bson:"timestamp"`
	Reason        string    `bson:"payment_ref"`
	PayerName     string    `bson:"payer_name"`
	PayerSortCode string    `bson:"payer_sort_code"`
	PayerAccNum   string    `bson:"payer_acc_num"`
	PayeeName     string    `bson:"payee_name"`
	PayeeSortCode string    `bson:"payee_sort_code"`
	PayeeAccNum   string    `bson:"payee_acc_num"`
	Amount        string    `bson:"amount"`
	Currency      string    `bson:"currency"`
	Status        string    `bson:"status"`
}

func toDoc(rec record.PaymentRecord) paymentDoc {
	return paymentDoc{
		ID:            rec.ID,
		Timestamp:     rec.Timestamp,
		Reason:        rec.Reason,
		PayerName:     rec.PayerName,
		PayerSortCode: rec.PayerSortCode,
		PayerAccNum:   rec.PayerAccNum,
		PayeeName:     rec.PayeeName,
		PayeeSortCode: rec.PayeeSortCode,
		PayeeAccNum:   rec.PayeeAccNum,
		Amount:        rec.Amount.String(),
		Currency:      rec.Currency,
		Status:        rec.Status,
	}
}

func fromDoc(doc paymentDoc) (record.PaymentRecord, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return record.PaymentRecord{}, &core.OpError{
			Kind: core.ErrUnknown,
			Err:  fmt.Errorf("record %s has malformed amount %q: %w", doc.ID, doc.Amount, err),
		}
	}
	return record.PaymentRecord{
		ID:            doc.ID,
		Timestamp:     doc.Timestamp,
		Reason:        doc.Reason,
		PayerName:     doc.PayerName,
		PayerSortCode: doc.PayerSortCode,
		PayerAccNum:   doc.PayerAccNum,
		PayeeName:     doc.PayeeName,
		PayeeSortCode: doc.PayeeSortCode,
		PayeeAccNum:   doc.PayeeAccNum,
		Amount:        amount,
		Currency:      doc.Currency,
		Status:        doc.Status,
	}, nil
}
