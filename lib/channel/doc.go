// Package channel implements the recording side of dRec. A channel binds
// named value slots to live variables owned by the caller; TakeSnapshot
// reads all of them at a point in time, serializes them into one record and
// pushes it to the attached sinks.
//
// Key Components:
//
//   - Channel: the slot container. Numeric values bind via RegisterValue,
//     container values via RegisterAccessor, registered composite types via
//     RegisterCustomValue (which shares serializer instances through the
//     scope's TypesRegistry).
//
//   - ChannelsRegistry: hands out channels by name, wiring newly created
//     channels to the registry's default sinks and to a shared types
//     registry. Construct one per recording scope; Global() exists for
//     processes that keep a single instance.
//
// The record layout is the flat concatenation of the slots in registration
// order, using the wire format of the serializer package. The channel
// announces its schema to every sink before the first snapshot and again
// after the layout changed.
//
// Snapshot frequency is the caller's concern: the channel never blocks on
// timers and performs no I/O of its own beyond handing the record buffer to
// the sinks.
package channel
