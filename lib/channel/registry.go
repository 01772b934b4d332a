package channel

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/ValentinKolb/dRec/lib/serializer"
	"github.com/ValentinKolb/dRec/lib/sink"
)

// --------------------------------------------------------------------------
// Channels Registry
// --------------------------------------------------------------------------

// ChannelsRegistry hands out named channels that share one types registry
// and a common set of default sinks. It is an explicit object; construct
// one per recording scope and inject it where needed. Global() is provided
// for processes that want a single long-lived instance.
type ChannelsRegistry struct {
	channels *xsync.MapOf[string, *Channel]
	types    *serializer.TypesRegistry

	mu           sync.Mutex
	defaultSinks []sink.ISink
}

// NewChannelsRegistry creates an empty channels registry with its own types
// registry.
func NewChannelsRegistry() *ChannelsRegistry {
	return &ChannelsRegistry{
		channels: xsync.NewMapOf[string, *Channel](),
		types:    serializer.NewTypesRegistry(),
	}
}

// AddDefaultSink attaches a sink to every channel created after this call.
// Add default sinks before creating channels.
func (r *ChannelsRegistry) AddDefaultSink(s sink.ISink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultSinks = append(r.defaultSinks, s)
}

// GetChannel returns the channel registered under name, creating it (with
// the default sinks attached) on first use.
func (r *ChannelsRegistry) GetChannel(name string) *Channel {
	c, _ := r.channels.LoadOrCompute(name, func() *Channel {
		c := NewChannel(name, r.types)

		r.mu.Lock()
		sinks := make([]sink.ISink, len(r.defaultSinks))
		copy(sinks, r.defaultSinks)
		r.mu.Unlock()

		for _, s := range sinks {
			c.AddSink(s)
		}
		return c
	})
	return c
}

// TypesRegistry returns the shared serializer registry of this scope.
func (r *ChannelsRegistry) TypesRegistry() *serializer.TypesRegistry {
	return r.types
}

// Size returns the number of channels created so far.
func (r *ChannelsRegistry) Size() int {
	return r.channels.Size()
}

// --------------------------------------------------------------------------
// Process-wide instance
// --------------------------------------------------------------------------

var (
	globalOnce     sync.Once
	globalRegistry *ChannelsRegistry
)

// Global returns the process-wide channels registry, created on first use.
func Global() *ChannelsRegistry {
	globalOnce.Do(func() {
		globalRegistry = NewChannelsRegistry()
	})
	return globalRegistry
}
