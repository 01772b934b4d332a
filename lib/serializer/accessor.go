package serializer

import (
	"encoding/binary"
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// Type Shape Classification
// --------------------------------------------------------------------------

// Kind classifies the shape of a field. The classification is structural and
// is resolvable from a zero instance: array windows keep their length on the
// zero value, slices classify as variable regardless of their current length.
type Kind uint8

const (
	// KindNumeric is a primitive numeric leaf (fixed width).
	KindNumeric Kind = iota
	// KindFixedContainer is a container with a compile-time-known element
	// count, e.g. a window over a fixed-length array.
	KindFixedContainer
	// KindVariableContainer is a container whose length is instance data,
	// e.g. a slice or a string. It is written with a uint32 count prefix.
	KindVariableContainer
	// KindComposite is a nested type implementing ISerializable.
	KindComposite
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindFixedContainer:
		return "fixed container"
	case KindVariableContainer:
		return "variable container"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// lenPrefixSize is the byte width of the element count written before every
// variable-length container.
const lenPrefixSize = 4

// --------------------------------------------------------------------------
// Field Accessor
// --------------------------------------------------------------------------

// FieldAccessor bundles the shape classification of a single field with the
// closures to measure, write and read it. Accessors are built by the
// constructors below and handed to the FieldVisitor by DescribeFields; they
// capture a pointer into the instance being described.
type FieldAccessor struct {
	kind      Kind
	typeName  string
	fixed     bool
	fixedSize int
	size      func() int
	write     func(dst []byte) int
	read      func(src []byte) (int, error)
}

// Kind returns the shape classification of the field.
func (a FieldAccessor) Kind() Kind { return a.kind }

// TypeName returns the schema type of the field (e.g. "float64",
// "int32[4]", "point[]").
func (a FieldAccessor) TypeName() string { return a.typeName }

// FixedSize reports whether the field serializes to the same byte length for
// every instance, and that length if so.
func (a FieldAccessor) FixedSize() (bool, int) { return a.fixed, a.fixedSize }

// Size returns the exact number of bytes Write will produce for the current
// value of the field.
func (a FieldAccessor) Size() int { return a.size() }

// Write serializes the field into dst and returns the number of bytes
// written. dst must be large enough; see ISerializer.Serialize.
func (a FieldAccessor) Write(dst []byte) int { return a.write(dst) }

// Read deserializes the field from src and returns the number of bytes
// consumed.
func (a FieldAccessor) Read(src []byte) (int, error) { return a.read(src) }

func errShort(what string) error {
	return fmt.Errorf("data too short for %s", what)
}

// --------------------------------------------------------------------------
// Numeric Leaf Accessors
// --------------------------------------------------------------------------

func numericAccessor(typeName string, width int, write func(dst []byte), read func(src []byte)) FieldAccessor {
	return FieldAccessor{
		kind:      KindNumeric,
		typeName:  typeName,
		fixed:     true,
		fixedSize: width,
		size:      func() int { return width },
		write: func(dst []byte) int {
			write(dst)
			return width
		},
		read: func(src []byte) (int, error) {
			if len(src) < width {
				return 0, errShort(typeName)
			}
			read(src)
			return width, nil
		},
	}
}

// Bool accesses a bool field (1 byte, 0 or 1).
func Bool(p *bool) FieldAccessor {
	return numericAccessor("bool", 1,
		func(dst []byte) {
			if *p {
				dst[0] = 1
			} else {
				dst[0] = 0
			}
		},
		func(src []byte) { *p = src[0] != 0 })
}

// Int8 accesses an int8 field.
func Int8(p *int8) FieldAccessor {
	return numericAccessor("int8", 1,
		func(dst []byte) { dst[0] = byte(*p) },
		func(src []byte) { *p = int8(src[0]) })
}

// Uint8 accesses a uint8 field.
func Uint8(p *uint8) FieldAccessor {
	return numericAccessor("uint8", 1,
		func(dst []byte) { dst[0] = *p },
		func(src []byte) { *p = src[0] })
}

// Int16 accesses an int16 field.
func Int16(p *int16) FieldAccessor {
	return numericAccessor("int16", 2,
		func(dst []byte) { binary.LittleEndian.PutUint16(dst, uint16(*p)) },
		func(src []byte) { *p = int16(binary.LittleEndian.Uint16(src)) })
}

// Uint16 accesses a uint16 field.
func Uint16(p *uint16) FieldAccessor {
	return numericAccessor("uint16", 2,
		func(dst []byte) { binary.LittleEndian.PutUint16(dst, *p) },
		func(src []byte) { *p = binary.LittleEndian.Uint16(src) })
}

// Int32 accesses an int32 field.
func Int32(p *int32) FieldAccessor {
	return numericAccessor("int32", 4,
		func(dst []byte) { binary.LittleEndian.PutUint32(dst, uint32(*p)) },
		func(src []byte) { *p = int32(binary.LittleEndian.Uint32(src)) })
}

// Uint32 accesses a uint32 field.
func Uint32(p *uint32) FieldAccessor {
	return numericAccessor("uint32", 4,
		func(dst []byte) { binary.LittleEndian.PutUint32(dst, *p) },
		func(src []byte) { *p = binary.LittleEndian.Uint32(src) })
}

// Int64 accesses an int64 field.
func Int64(p *int64) FieldAccessor {
	return numericAccessor("int64", 8,
		func(dst []byte) { binary.LittleEndian.PutUint64(dst, uint64(*p)) },
		func(src []byte) { *p = int64(binary.LittleEndian.Uint64(src)) })
}

// Uint64 accesses a uint64 field.
func Uint64(p *uint64) FieldAccessor {
	return numericAccessor("uint64", 8,
		func(dst []byte) { binary.LittleEndian.PutUint64(dst, *p) },
		func(src []byte) { *p = binary.LittleEndian.Uint64(src) })
}

// Float32 accesses a float32 field.
func Float32(p *float32) FieldAccessor {
	return numericAccessor("float32", 4,
		func(dst []byte) { binary.LittleEndian.PutUint32(dst, math.Float32bits(*p)) },
		func(src []byte) { *p = math.Float32frombits(binary.LittleEndian.Uint32(src)) })
}

// Float64 accesses a float64 field.
func Float64(p *float64) FieldAccessor {
	return numericAccessor("float64", 8,
		func(dst []byte) { binary.LittleEndian.PutUint64(dst, math.Float64bits(*p)) },
		func(src []byte) { *p = math.Float64frombits(binary.LittleEndian.Uint64(src)) })
}

// NumericAccessor returns the accessor for any numeric leaf type. It is
// mainly used by collaborators (e.g. the recording channel) that bind
// numeric values generically.
func NumericAccessor[T Numeric](p *T) FieldAccessor {
	switch q := any(p).(type) {
	case *bool:
		return Bool(q)
	case *int8:
		return Int8(q)
	case *int16:
		return Int16(q)
	case *int32:
		return Int32(q)
	case *int64:
		return Int64(q)
	case *uint8:
		return Uint8(q)
	case *uint16:
		return Uint16(q)
	case *uint32:
		return Uint32(q)
	case *uint64:
		return Uint64(q)
	case *float32:
		return Float32(q)
	case *float64:
		return Float64(q)
	default:
		// unreachable, the Numeric constraint is exhaustive
		panic(fmt.Sprintf("unsupported numeric type %T", p))
	}
}

// --------------------------------------------------------------------------
// Container Accessors
// --------------------------------------------------------------------------

// String accesses a string field. Strings are variable-length containers of
// bytes and are written with a uint32 length prefix.
func String(p *string) FieldAccessor {
	return FieldAccessor{
		kind:     KindVariableContainer,
		typeName: "string",
		size:     func() int { return lenPrefixSize + len(*p) },
		write: func(dst []byte) int {
			binary.LittleEndian.PutUint32(dst, uint32(len(*p)))
			copy(dst[lenPrefixSize:], *p)
			return lenPrefixSize + len(*p)
		},
		read: func(src []byte) (int, error) {
			if len(src) < lenPrefixSize {
				return 0, errShort("string length")
			}
			n := int(binary.LittleEndian.Uint32(src))
			if len(src) < lenPrefixSize+n {
				return 0, errShort("string data")
			}
			*p = string(src[lenPrefixSize : lenPrefixSize+n])
			return lenPrefixSize + n, nil
		},
	}
}

// FixedList accesses a fixed-length container. The caller passes a window
// over the backing array (e.g. v.Pos[:]) together with the accessor
// constructor for the element type. The element count is part of the type
// and is therefore not written to the wire.
func FixedList[T any](window []T, elem func(*T) FieldAccessor) FieldAccessor {
	var zero T
	proto := elem(&zero)
	n := len(window)

	a := FieldAccessor{
		kind:     KindFixedContainer,
		typeName: fmt.Sprintf("%s[%d]", proto.typeName, n),
		fixed:    proto.fixed,
	}
	if proto.fixed {
		a.fixedSize = n * proto.fixedSize
		a.size = func() int { return n * proto.fixedSize }
	} else {
		a.size = func() int {
			total := 0
			for i := range window {
				total += elem(&window[i]).size()
			}
			return total
		}
	}
	a.write = func(dst []byte) int {
		pos := 0
		for i := range window {
			pos += elem(&window[i]).write(dst[pos:])
		}
		return pos
	}
	a.read = func(src []byte) (int, error) {
		pos := 0
		for i := range window {
			n, err := elem(&window[i]).read(src[pos:])
			if err != nil {
				return pos, err
			}
			pos += n
		}
		return pos, nil
	}
	return a
}

// List accesses a variable-length container (a slice field). The element
// count is instance data and is written as a uint32 prefix, so any type
// containing a List field is variable-size.
func List[T any](p *[]T, elem func(*T) FieldAccessor) FieldAccessor {
	var zero T
	proto := elem(&zero)

	a := FieldAccessor{
		kind:     KindVariableContainer,
		typeName: proto.typeName + "[]",
	}
	if proto.fixed {
		elemSize := proto.fixedSize
		a.size = func() int { return lenPrefixSize + len(*p)*elemSize }
	} else {
		a.size = func() int {
			total := lenPrefixSize
			for i := range *p {
				total += elem(&(*p)[i]).size()
			}
			return total
		}
	}
	a.write = func(dst []byte) int {
		binary.LittleEndian.PutUint32(dst, uint32(len(*p)))
		pos := lenPrefixSize
		for i := range *p {
			pos += elem(&(*p)[i]).write(dst[pos:])
		}
		return pos
	}
	a.read = func(src []byte) (int, error) {
		if len(src) < lenPrefixSize {
			return 0, errShort(a.typeName + " length")
		}
		count := int(binary.LittleEndian.Uint32(src))

		if proto.fixed {
			// Validate the count against the remaining input before
			// allocating: a forged prefix must fail with an error, not
			// an oversized make.
			if count*proto.fixedSize > len(src)-lenPrefixSize {
				return 0, errShort(a.typeName + " data")
			}

			// Reuse the backing array where possible (avoids
			// allocations when deserializing into a recycled instance).
			if cap(*p) < count {
				*p = make([]T, count)
			} else {
				*p = (*p)[:count]
			}

			pos := lenPrefixSize
			for i := 0; i < count; i++ {
				n, err := elem(&(*p)[i]).read(src[pos:])
				if err != nil {
					return pos, err
				}
				pos += n
			}
			return pos, nil
		}

		// Variable-size elements: the count alone does not bound the
		// payload, so grow element by element and let the element reads
		// bounds-check the input.
		*p = (*p)[:0]
		pos := lenPrefixSize
		for i := 0; i < count; i++ {
			var v T
			n, err := elem(&v).read(src[pos:])
			if err != nil {
				return pos, err
			}
			pos += n
			*p = append(*p, v)
		}
		return pos, nil
	}
	return a
}

// Object accesses a nested composite field implementing ISerializable. The
// nested type's fields are written inline, in its own declaration order.
func Object[T any, PT Ptr[T]](p PT) FieldAccessor {
	fixed, fixedSize := analyzeType[T, PT]()

	a := FieldAccessor{
		kind:      KindComposite,
		typeName:  p.TypeName(),
		fixed:     fixed,
		fixedSize: fixedSize,
	}
	if fixed {
		a.size = func() int { return fixedSize }
	} else {
		a.size = func() int { return instanceSize[T, PT](p) }
	}
	a.write = func(dst []byte) int { return writeInstance[T, PT](p, dst) }
	a.read = func(src []byte) (int, error) { return readInstance[T, PT](p, src) }
	return a
}
