package channel

import (
	"fmt"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/ValentinKolb/dRec/lib/serializer"
	"github.com/ValentinKolb/dRec/lib/sink"
)

var Logger = logger.GetLogger("channel")

// --------------------------------------------------------------------------
// Slot Type
// --------------------------------------------------------------------------

// slot binds a stable name to a user-owned memory location. Numeric and
// container slots carry a field accessor, custom slots carry a shared
// serializer handle plus the instance pointer.
type slot struct {
	name   string
	access serializer.FieldAccessor

	ser      serializer.ISerializer
	instance any
}

func (s *slot) typeName() string {
	if s.ser != nil {
		return s.ser.TypeName()
	}
	return s.access.TypeName()
}

func (s *slot) size() int {
	if s.ser != nil {
		return s.ser.SerializedSize(s.instance)
	}
	return s.access.Size()
}

func (s *slot) write(dst []byte) (int, error) {
	if s.ser != nil {
		n := s.ser.SerializedSize(s.instance)
		if err := s.ser.Serialize(s.instance, dst[:n]); err != nil {
			return 0, err
		}
		return n, nil
	}
	return s.access.Write(dst), nil
}

// --------------------------------------------------------------------------
// Channel Type
// --------------------------------------------------------------------------

// Channel binds named value slots to live variables and serializes all of
// them into one record per snapshot. Values are registered once, snapshots
// are taken at high frequency.
//
// Thread-safety: registration, sink attachment and snapshots may be called
// concurrently; they are serialized by a per-channel lock. The caller must
// not mutate a bound variable while a snapshot runs.
type Channel struct {
	name  string
	types *serializer.TypesRegistry

	mu    sync.Mutex
	slots []*slot
	sinks []sink.ISink
	dirty bool // schema must be (re-)announced to the sinks
	buf   []byte

	snapshotsTotal *metrics.Counter
	bytesTotal     *metrics.Counter
	rejectedTotal  *metrics.Counter
}

// NewChannel creates a standalone channel using the given types registry
// for custom value lookups. Channels are usually obtained through a
// ChannelsRegistry instead.
func NewChannel(name string, types *serializer.TypesRegistry) *Channel {
	return &Channel{
		name:           name,
		types:          types,
		snapshotsTotal: metrics.GetOrCreateCounter(fmt.Sprintf(`drec_snapshots_total{channel=%q}`, name)),
		bytesTotal:     metrics.GetOrCreateCounter(fmt.Sprintf(`drec_snapshot_bytes_total{channel=%q}`, name)),
		rejectedTotal:  metrics.GetOrCreateCounter(fmt.Sprintf(`drec_snapshots_rejected_total{channel=%q}`, name)),
	}
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// TypesRegistry returns the registry used for custom value slots.
func (c *Channel) TypesRegistry() *serializer.TypesRegistry {
	return c.types
}

// --------------------------------------------------------------------------
// Registration
// --------------------------------------------------------------------------

// RegisterAccessor binds a slot through an explicit field accessor. This is
// the general form: it covers numeric leaves as well as container values
// such as serializer.List(&vec, serializer.Float64).
func (c *Channel) RegisterAccessor(name string, access serializer.FieldAccessor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasSlot(name) {
		return fmt.Errorf("channel %q: value %q already registered", c.name, name)
	}
	c.slots = append(c.slots, &slot{name: name, access: access})
	c.dirty = true
	return nil
}

// RegisterValue binds a numeric value to a slot. Numeric leaves are written
// as raw bytes directly and need no serializer.
func RegisterValue[T serializer.Numeric](c *Channel, name string, value *T) error {
	return c.RegisterAccessor(name, serializer.NumericAccessor(value))
}

// RegisterCustomValue binds a value of a registered composite type to a
// slot. The serializer is obtained through the channel's types registry, so
// all channels recording the same type share one instance.
func RegisterCustomValue[T any, PT serializer.Ptr[T]](c *Channel, name string, value PT) error {
	ser := serializer.GetSerializer[T, PT](c.types)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hasSlot(name) {
		return fmt.Errorf("channel %q: value %q already registered", c.name, name)
	}
	c.slots = append(c.slots, &slot{name: name, ser: ser, instance: value})
	c.dirty = true
	return nil
}

// hasSlot must be called with the lock held
func (c *Channel) hasSlot(name string) bool {
	for _, s := range c.slots {
		if s.name == name {
			return true
		}
	}
	return false
}

// AddSink attaches a sink. The channel schema is announced to all sinks
// before the next snapshot.
func (c *Channel) AddSink(s sink.ISink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
	c.dirty = true
}

// Schema describes the channel's current record layout.
func (c *Channel) Schema() sink.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schemaLocked()
}

func (c *Channel) schemaLocked() sink.Schema {
	schema := sink.Schema{
		Channel: c.name,
		Fields:  make([]sink.SchemaField, 0, len(c.slots)),
	}
	for _, s := range c.slots {
		schema.Fields = append(schema.Fields, sink.SchemaField{
			Name: s.name,
			Type: s.typeName(),
		})
		if s.ser != nil {
			if custom, ok := s.ser.TypeSchema(); ok {
				if schema.Types == nil {
					schema.Types = make(map[string]string)
				}
				schema.Types[s.ser.TypeName()] = custom
			}
		}
	}
	return schema
}

// --------------------------------------------------------------------------
// Snapshot
// --------------------------------------------------------------------------

// TakeSnapshot reads the current values of all bound slots, serializes them
// into one record and hands it to every attached sink. It returns false if
// any sink rejected the record.
//
// The record buffer is reused between snapshots, so the steady-state path
// performs no allocations for fixed-size slots.
func (c *Channel) TakeSnapshot() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		schema := c.schemaLocked()
		for _, s := range c.sinks {
			if err := s.AddChannel(c.name, schema); err != nil {
				Logger.Errorf("channel %q: failed to announce schema: %v", c.name, err)
				return false
			}
		}
		c.dirty = false
	}

	total := 0
	for _, s := range c.slots {
		total += s.size()
	}
	if cap(c.buf) < total {
		c.buf = make([]byte, total)
	}
	c.buf = c.buf[:total]

	pos := 0
	for _, s := range c.slots {
		n, err := s.write(c.buf[pos:])
		if err != nil {
			Logger.Errorf("channel %q: failed to serialize %q: %v", c.name, s.name, err)
			return false
		}
		pos += n
	}

	snap := sink.Snapshot{
		Channel:     c.name,
		TimestampNS: time.Now().UnixNano(),
		Payload:     c.buf,
	}

	ok := true
	for _, s := range c.sinks {
		if err := s.StoreSnapshot(snap); err != nil {
			Logger.Warningf("channel %q: sink rejected snapshot: %v", c.name, err)
			c.rejectedTotal.Inc()
			ok = false
		}
	}

	c.snapshotsTotal.Inc()
	c.bytesTotal.Add(total)
	return ok
}
