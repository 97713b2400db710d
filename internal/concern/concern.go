// Package concern maps user-selected concern names to the driver's
// write and read concern configurations. Resolution is a pure lookup
// against static tables, safe to call concurrently.
package concern

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Kind distinguishes the two concern namespaces. WRITE "MAJORITY" and
// READ "MAJORITY" are independent policies that happen to share a name.
type Kind string

const (
	Write Kind = "write"
	Read  Kind = "read"
)

// Recognized write concern names, weakest durability first.
const (
	WriteUnacknowledged = "UNACKNOWLEDGED"
	WriteAcknowledged   = "ACKNOWLEDGED"
	WriteJournaled      = "JOURNALED"
	WriteMajority       = "MAJORITY"
	WriteAll            = "ALL"
)

// Recognized read concern names, weakest consistency first.
const (
	ReadLocal        = "LOCAL"
	ReadAvailable    = "AVAILABLE"
	ReadMajority     = "MAJORITY"
	ReadLinearizable = "LINEARIZABLE"
	ReadSnapshot     = "SNAPSHOT"
)

// UnsupportedConcernError reports a name outside the closed
// enumeration for its kind. It is fatal: the run never starts.
type UnsupportedConcernError struct {
	Kind Kind
	Name string
}

func (e *UnsupportedConcernError) Error() string {
	return fmt.Sprintf("unsupported %s concern %q", e.Kind, e.Name)
}

// journaledMajority is the strongest durability the driver can express
// without knowing the replica set topology; ALL resolves to it.
func journaledMajority() *writeconcern.WriteConcern {
	journal := true
	return &writeconcern.WriteConcern{W: "majority", Journal: &journal}
}

var writeConcerns = map[string]*writeconcern.WriteConcern{
	WriteUnacknowledged: writeconcern.Unacknowledged(),
	WriteAcknowledged:   writeconcern.W1(),
	WriteJournaled:      writeconcern.Journaled(),
	WriteMajority:       writeconcern.Majority(),
	WriteAll:            journaledMajority(),
}

var readConcerns = map[string]*readconcern.ReadConcern{
	ReadLocal:        readconcern.Local(),
	ReadAvailable:    readconcern.Available(),
	ReadMajority:     readconcern.Majority(),
	ReadLinearizable: readconcern.Linearizable(),
	ReadSnapshot:     readconcern.Snapshot(),
}

// ResolveWrite returns the write concern registered under name.
func ResolveWrite(name string) (*writeconcern.WriteConcern, error) {
	wc, ok := writeConcerns[name]
	if !ok {
		return nil, &UnsupportedConcernError{Kind: Write, Name: name}
	}
	return wc, nil
}

// ResolveRead returns the read concern registered under name.
func ResolveRead(name string) (*readconcern.ReadConcern, error) {
	rc, ok := readConcerns[name]
	if !ok {
		return nil, &UnsupportedConcernError{Kind: Read, Name: name}
	}
	return rc, nil
}

// WriteNames lists the recognized write concern names in durability
// order, for usage text.
func WriteNames() []string {
	return []string{WriteUnacknowledged, WriteAcknowledged, WriteJournaled, WriteMajority, WriteAll}
}

// ReadNames lists the recognized read concern names in consistency
// order, for usage text.
func ReadNames() []string {
	return []string{ReadLocal, ReadAvailable, ReadMajority, ReadLinearizable, ReadSnapshot}
}
