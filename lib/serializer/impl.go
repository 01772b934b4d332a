package serializer

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Fixed-Size Analyzer
// --------------------------------------------------------------------------

type typeAnalysis struct {
	fixed bool
	size  int
}

// analysisCache memoizes the per-type fixed-size analysis so that nested
// Object accessors do not re-walk the field graph on every construction.
// Keyed by reflect.Type, which is only used as a cache key and never on the
// serialization hot path.
var analysisCache = xsync.NewMapOf[reflect.Type, typeAnalysis]()

// analyzeType computes whether T's serialized footprint is constant across
// all instances, and the constant byte count if so. The walk is pure: it
// operates on a zero instance's field descriptors and never touches a
// registry, so no lock is held while it runs.
func analyzeType[T any, PT Ptr[T]]() (bool, int) {
	key := reflect.TypeFor[T]()
	if a, ok := analysisCache.Load(key); ok {
		return a.fixed, a.size
	}

	var zero T
	fixed, total := true, 0
	PT(&zero).DescribeFields(func(_ string, access FieldAccessor) {
		// Once a variable-length field is seen the static total is
		// meaningless, so stop accumulating.
		if !fixed {
			return
		}
		if ok, n := access.FixedSize(); ok {
			total += n
		} else {
			fixed = false
			total = 0
		}
	})

	a := typeAnalysis{fixed: fixed, size: total}
	analysisCache.Store(key, a)
	return a.fixed, a.size
}

// --------------------------------------------------------------------------
// Instance Walkers
// --------------------------------------------------------------------------

// instanceSize sums the exact byte count of every field for one instance.
// Only called for variable-size types; fixed-size types answer from cache.
func instanceSize[T any, PT Ptr[T]](p PT) int {
	total := 0
	p.DescribeFields(func(_ string, access FieldAccessor) {
		total += access.size()
	})
	return total
}

func writeInstance[T any, PT Ptr[T]](p PT, dst []byte) int {
	pos := 0
	p.DescribeFields(func(_ string, access FieldAccessor) {
		pos += access.write(dst[pos:])
	})
	return pos
}

func readInstance[T any, PT Ptr[T]](p PT, src []byte) (int, error) {
	pos := 0
	var firstErr error
	p.DescribeFields(func(name string, access FieldAccessor) {
		if firstErr != nil {
			return
		}
		n, err := access.read(src[pos:])
		if err != nil {
			firstErr = fmt.Errorf("field %s: %w", name, err)
			return
		}
		pos += n
	})
	return pos, firstErr
}

// --------------------------------------------------------------------------
// Generic Serializer Implementation
// --------------------------------------------------------------------------

// typeSerializer implements ISerializer for any type satisfying the
// reflection protocol. All fields are set at construction time and never
// mutated afterwards, so the methods are safe for concurrent use.
type typeSerializer[T any, PT Ptr[T]] struct {
	name      string
	schema    string
	hasSchema bool
	fixed     bool
	fixedSize int
}

// NewTypeSerializer creates a serializer for T under its declared type name.
// The fixed-size analysis over T's full field graph runs here, once per
// type, not once per record.
func NewTypeSerializer[T any, PT Ptr[T]]() ISerializer {
	return newTypeSerializer[T, PT](PT(new(T)).TypeName())
}

func newTypeSerializer[T any, PT Ptr[T]](name string) ISerializer {
	fixed, fixedSize := analyzeType[T, PT]()
	s := &typeSerializer[T, PT]{
		name:      name,
		fixed:     fixed,
		fixedSize: fixedSize,
	}
	if sp, ok := any(PT(new(T))).(ISchemaProvider); ok {
		s.schema = sp.TypeSchema()
		s.hasSchema = true
	}
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.ISerializer)
// --------------------------------------------------------------------------

func (s *typeSerializer[T, PT]) TypeName() string {
	return s.name
}

func (s *typeSerializer[T, PT]) TypeSchema() (string, bool) {
	return s.schema, s.hasSchema
}

func (s *typeSerializer[T, PT]) IsFixedSize() bool {
	return s.fixed
}

func (s *typeSerializer[T, PT]) SerializedSize(instance any) int {
	if s.fixed {
		return s.fixedSize
	}
	return instanceSize[T, PT](s.assert(instance))
}

func (s *typeSerializer[T, PT]) Serialize(instance any, dst []byte) error {
	p, ok := instance.(PT)
	if !ok {
		return fmt.Errorf("serializer %q: unexpected instance type %T", s.name, instance)
	}
	if s.fixed && len(dst) != s.fixedSize {
		panic(fmt.Sprintf("serializer %q: destination is %d bytes, need exactly %d",
			s.name, len(dst), s.fixedSize))
	}
	n := writeInstance[T, PT](p, dst)
	if n != len(dst) {
		panic(fmt.Sprintf("serializer %q: wrote %d bytes into a %d byte destination",
			s.name, n, len(dst)))
	}
	return nil
}

func (s *typeSerializer[T, PT]) Deserialize(src []byte, instance any) error {
	p, ok := instance.(PT)
	if !ok {
		return fmt.Errorf("serializer %q: unexpected instance type %T", s.name, instance)
	}
	n, err := readInstance[T, PT](p, src)
	if err != nil {
		return fmt.Errorf("serializer %q: %w", s.name, err)
	}
	if n != len(src) {
		return fmt.Errorf("serializer %q: %d trailing bytes after record", s.name, len(src)-n)
	}
	return nil
}

// assert panics on an instance of the wrong type. Used by SerializedSize,
// which has no error return; passing a foreign instance is a programmer
// error on par with a mis-sized destination buffer.
func (s *typeSerializer[T, PT]) assert(instance any) PT {
	p, ok := instance.(PT)
	if !ok {
		panic(fmt.Sprintf("serializer %q: unexpected instance type %T", s.name, instance))
	}
	return p
}
