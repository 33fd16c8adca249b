// Package ingest implements the Input Emitter: a lazy, potentially-
// infinite stream of type/topic assertion records read from files,
// stdin, or a discovery feed.
package ingest

import (
	"time"

	"github.com/wkalt/typewatch/typecode"
)

// Record is one assertion request read from an input stream: a topic name
// (empty for a name-only type assertion), a type name (empty when a
// typecode is supplied directly), and an optional typecode.
type Record struct {
	Topic    string
	TypeName string
	Typecode *typecode.TypeCode
}

// Emitter is the Input Emitter contract.
type Emitter interface {
	Open() error
	Close() error
	IsActive() bool
	// Next blocks up to timeout (if block is true) for a record. It
	// returns a *NoInputError when the stream is definitively exhausted,
	// or a *TimeoutError when the poll window elapsed but the stream is
	// still active and may yet produce more.
	Next(timeout time.Duration, block bool) (Record, error)
}
