// Package serializer implements the type-reflection and binary-serialization
// engine of dRec. User-defined value types are registered once, described
// field by field, and thereafter serialized into compact byte buffers at
// recording rates (on the order of a million samples per second), with size
// prediction cheap enough to avoid per-call measurement on the hot path.
//
// The package focuses on:
//   - A static reflection protocol (ISerializable) through which a type
//     exposes a stable name and an ordered field list
//   - A recursive fixed-size analysis that classifies a type as constant- or
//     variable-size at serializer-construction time
//   - A polymorphic serializer abstraction (ISerializer) implemented
//     generically for any type satisfying the protocol
//   - A thread-safe registry caching one shared serializer per type name
//
// Key Components:
//
//   - ISerializable: the protocol a type author implements on *T. TypeName
//     yields the registry key, DescribeFields visits each field in wire
//     order with a FieldAccessor built by the constructors in this package
//     (Bool, Int32, Float64, ..., String, FixedList, List, Object).
//
//   - FieldAccessor: ties a field's shape classification (Kind) to the
//     closures that measure, write and read it. Containers are anonymous in
//     the schema: their type renders through their element type.
//
//   - typeSerializer: the generic ISerializer implementation. Construction
//     runs the fixed-size analysis once over the full field graph and caches
//     the result; the instance is immutable afterwards.
//
//   - TypesRegistry: maps type names to shared serializer instances with
//     at-most-one construction per name under concurrent first access.
//
// Wire Format:
//
//	A record is the flat, unpadded concatenation of the fields in
//	declaration order. Numeric leaves are written as raw little-endian
//	fixed-width values, fixed-length containers write their elements back
//	to back, and variable-length containers (and strings) are preceded by
//	a uint32 element count. Deserialize consumes the same stream in the
//	same order.
//
// Thread Safety:
//
//	Serializer instances are immutable after construction and safe for
//	concurrent use, provided the caller does not mutate the instance or
//	buffer passed to a call while it runs. Registry operations are
//	serialized internally; the steady-state recording path never touches
//	the registry once a handle is cached.
//
// Usage:
//
//	type Point struct{ X, Y float64 }
//
//	func (p *Point) TypeName() string { return "point" }
//	func (p *Point) DescribeFields(visit serializer.FieldVisitor) {
//		visit("x", serializer.Float64(&p.X))
//		visit("y", serializer.Float64(&p.Y))
//	}
//
//	registry := serializer.NewTypesRegistry()
//	s := serializer.GetSerializer[Point](registry)
//	buf := make([]byte, s.SerializedSize(&pt))
//	err := s.Serialize(&pt, buf)
package serializer
