package sink

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("sink")

// --------------------------------------------------------------------------
// Schema and Snapshot Types
// --------------------------------------------------------------------------

// SchemaField describes one recorded value of a channel: its slot name and
// its wire type (e.g. "float64", "int32[4]", "point[]").
type SchemaField struct {
	Name string
	Type string
}

// Schema describes the record layout of one channel. It is handed to a sink
// once per newly observed channel, before the first snapshot arrives.
type Schema struct {
	// Channel is the name of the channel this schema belongs to.
	Channel string
	// Fields lists the recorded values in wire order.
	Fields []SchemaField
	// Types carries the optional self-describing schema strings of the
	// custom types referenced by the fields, keyed by type name.
	Types map[string]string
}

// String renders the schema as text: one "<type> <name>" line per field,
// followed by a block per custom type schema.
func (s Schema) String() string {
	var sb strings.Builder
	for _, f := range s.Fields {
		sb.WriteString(fmt.Sprintf("%s %s\n", f.Type, f.Name))
	}

	// sort the custom type blocks for deterministic output
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sb.WriteString(fmt.Sprintf("=== %s ===\n%s\n", name, s.Types[name]))
	}
	return sb.String()
}

// Snapshot is one serialized record of a channel at a point in time.
//
// The payload buffer is owned by the channel and reused between snapshots;
// a sink that retains it beyond the StoreSnapshot call must copy it.
type Snapshot struct {
	Channel     string
	TimestampNS int64
	Payload     []byte
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISink consumes the output of recording channels. Implementations must be
// safe for concurrent use: several channels may share one sink.
type ISink interface {
	// AddChannel announces a channel and its record schema to the sink.
	// It is called before the channel's first snapshot and again whenever
	// the channel's layout changes (new values registered).
	AddChannel(name string, schema Schema) error
	// StoreSnapshot hands one serialized record to the sink. An error
	// return signals a rejected write and fails the snapshot.
	StoreSnapshot(snap Snapshot) error
	// Close flushes and releases the sink's resources.
	Close() error
}
