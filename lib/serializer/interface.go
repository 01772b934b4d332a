package serializer

import "github.com/lni/dragonboat/v4/logger"

var Logger = logger.GetLogger("serializer")

// --------------------------------------------------------------------------
// Reflection Protocol
// --------------------------------------------------------------------------

// FieldVisitor is invoked once per field, in declaration order. The order of
// the DescribeFields calls defines the wire order of the serialized record.
type FieldVisitor func(name string, access FieldAccessor)

// ISerializable is the contract a user type implements to opt into
// serialization. It is implemented on the pointer type (*T) so that the
// field accessors handed to the visitor can read and write the fields.
type ISerializable interface {
	// TypeName returns a stable name for the type. It is used as the
	// registry key and as the type identifier in schemas. No two distinct
	// types may share a name within one registry.
	TypeName() string
	// DescribeFields calls visit once per field, in a fixed declaration
	// order that matches the byte order written by Serialize.
	DescribeFields(visit FieldVisitor)
}

// ISchemaProvider can optionally be implemented alongside ISerializable to
// expose a richer, self-describing schema string to downstream consumers
// (e.g. log file readers).
type ISchemaProvider interface {
	TypeSchema() string
}

// Ptr constrains PT to a pointer to T that implements the reflection
// protocol. It allows the generic constructors to instantiate a zero T and
// walk its fields without an instance supplied by the caller.
type Ptr[T any] interface {
	*T
	ISerializable
}

// Numeric enumerates the numeric leaf types. Numeric values are written as
// their raw fixed-width little-endian representation and never need a
// serializer of their own.
type Numeric interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// --------------------------------------------------------------------------
// Serializer Interface
// --------------------------------------------------------------------------

// ISerializer is the polymorphic serializer abstraction. Instances are
// immutable after construction and safe for concurrent use; the fixed-size
// analysis runs once, at construction time.
//
// Instances passed to SerializedSize, Serialize and Deserialize must be
// pointers to the wrapped type.
type ISerializer interface {
	// TypeName returns the name the serializer was registered under.
	TypeName() string
	// TypeSchema returns the optional self-describing schema of the type.
	// The second return value is false if the type does not provide one.
	TypeSchema() (string, bool)
	// IsFixedSize reports whether the serialized byte length is identical
	// for every instance of the wrapped type.
	IsFixedSize() bool
	// SerializedSize returns the exact number of bytes Serialize will
	// write for the given instance. For fixed-size types this is a cached
	// constant and the instance data is not inspected.
	SerializedSize(instance any) int
	// Serialize writes the instance into dst. The destination must be
	// exactly SerializedSize(instance) bytes long; violating this is a
	// programmer error and panics. See the package documentation.
	Serialize(instance any, dst []byte) error
	// Deserialize reads a record produced by Serialize back into the
	// instance. Unlike Serialize it performs full bounds checking and
	// returns an error on malformed input.
	Deserialize(src []byte, instance any) error
}
