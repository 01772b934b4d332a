package sink

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// DummySink counts what it receives and discards the data. Used by tests
// and by the benchmark command to measure the recording path without disk
// I/O.
type DummySink struct {
	schemas   *xsync.MapOf[string, Schema]
	snapshots atomic.Int64
	bytes     atomic.Int64
}

// NewDummySink creates a new counting sink.
func NewDummySink() *DummySink {
	return &DummySink{
		schemas: xsync.NewMapOf[string, Schema](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see sink.ISink)
// --------------------------------------------------------------------------

func (s *DummySink) AddChannel(name string, schema Schema) error {
	s.schemas.Store(name, schema)
	return nil
}

func (s *DummySink) StoreSnapshot(snap Snapshot) error {
	s.snapshots.Add(1)
	s.bytes.Add(int64(len(snap.Payload)))
	return nil
}

func (s *DummySink) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Inspection Helpers
// --------------------------------------------------------------------------

// Schema returns the last schema announced for a channel.
func (s *DummySink) Schema(name string) (Schema, bool) {
	return s.schemas.Load(name)
}

// Channels returns the number of channels observed so far.
func (s *DummySink) Channels() int {
	return s.schemas.Size()
}

// Snapshots returns the number of snapshots stored so far.
func (s *DummySink) Snapshots() int64 {
	return s.snapshots.Load()
}

// Bytes returns the total payload bytes stored so far.
func (s *DummySink) Bytes() int64 {
	return s.bytes.Load()
}
