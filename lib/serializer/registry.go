package serializer

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Types Registry
// --------------------------------------------------------------------------

// TypesRegistry caches one shared serializer instance per registered type
// name. Entries are created on first lookup or explicit registration and
// live for the registry's lifetime; handles returned to callers stay valid
// independently of later registrations.
//
// Thread-safety: all methods may be called concurrently. The fixed-size
// analysis is a pure phase that runs outside any registry-internal locking,
// so lookups for member types never deadlock.
type TypesRegistry struct {
	types *xsync.MapOf[string, ISerializer]
}

// NewTypesRegistry creates an empty registry. A process typically keeps one
// long-lived instance and injects it into its collaborators (e.g. recording
// channels); nothing in this package assumes a global singleton.
func NewTypesRegistry() *TypesRegistry {
	return &TypesRegistry{
		types: xsync.NewMapOf[string, ISerializer](),
	}
}

// GetSerializer returns the shared serializer for T, constructing and
// caching it under T's declared type name on first use. Under concurrent
// first access at most one serializer is constructed per name.
//
// Numeric types and container types are rejected at compile time by the Ptr
// constraint: neither implements ISerializable. Numeric values should be
// written as raw bytes directly, containers are registered through their
// element type.
func GetSerializer[T any, PT Ptr[T]](r *TypesRegistry) ISerializer {
	name := PT(new(T)).TypeName()
	s, _ := r.types.LoadOrCompute(name, func() ISerializer {
		return newTypeSerializer[T, PT](name)
	})
	return s
}

// AddType explicitly registers a serializer for T under a caller-chosen
// name, bypassing the type's own declared name.
//
// With skipIfPresent, an existing entry is left untouched and nil is
// returned (idempotent re-registration for independent call sites binding
// the same element type). Without it, an existing entry is overwritten:
// last write wins, and handles already held by other callers keep pointing
// at the replaced instance. Overwrites of a live name are logged because
// they can split the observed schema across callers.
func AddType[T any, PT Ptr[T]](r *TypesRegistry, typeName string, skipIfPresent bool) ISerializer {
	if skipIfPresent {
		var created ISerializer
		r.types.LoadOrCompute(typeName, func() ISerializer {
			created = newTypeSerializer[T, PT](typeName)
			return created
		})
		// created stays nil if an entry already existed
		return created
	}

	s := newTypeSerializer[T, PT](typeName)
	if _, replaced := r.types.LoadAndStore(typeName, s); replaced {
		Logger.Warningf("serializer for %q replaced; handles held by other callers keep the old instance", typeName)
	}
	return s
}

// Lookup returns the serializer registered under name, if any. It is the
// non-generic access path for collaborators that only know the name.
func (r *TypesRegistry) Lookup(name string) (ISerializer, bool) {
	return r.types.Load(name)
}

// Size returns the number of registered type names.
func (r *TypesRegistry) Size() int {
	return r.types.Size()
}
