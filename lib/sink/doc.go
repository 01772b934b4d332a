// Package sink defines the consumers of recorded data. A sink receives a
// channel's schema once per newly observed channel and one serialized record
// per snapshot.
//
// Key Components:
//
//   - ISink: the interface all sinks implement. Sinks may be shared by
//     several channels and must tolerate concurrent calls.
//
//   - DummySink: counts channels, snapshots and payload bytes and discards
//     the data. Used by tests and benchmarks.
//
//   - LogFileSink / LogFileReader: a structured binary log file writer and
//     its companion reader. The file is a magic number, a format version,
//     and a sequence of length-prefixed schema and snapshot blocks.
//
// Snapshots hand the sink a payload buffer owned by the channel; sinks that
// retain it beyond the call must copy it.
package sink
