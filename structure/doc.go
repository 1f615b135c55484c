// Package structure compiles DLF type-structure strings into reusable decode plans.
//
// Every stream in a DLF header carries a type-structure string describing the
// bytes of one sample. The string is compiled once, at header parse time, into a
// Plan, and the Plan is then applied to every sample of the stream.
//
// # Grammar
//
//	"!anything"                         Opaque: occupies type_size bytes, yields no value
//	"double"                            Primitive: one little-endian value
//	"name;m1:type:off;m2:type:off;..."  Composite: named primitive members
//
// Primitive keywords are uint8_t, bool, uint16_t, uint32_t, uint64_t, int8_t,
// int16_t, int32_t, int64_t, float and double.
//
// The first token of a composite string is decorative. Each member is read
// independently at base+offset: offsets may appear in any order, overlap, or
// leave gaps (struct padding), and decoding must not assume the members are
// packed sequentially.
//
// # Values
//
// Primitive plans decode to the matching Go type (uint8, bool, uint16, uint32,
// uint64, int8, int16, int32, int64, float32, float64). Composite plans decode
// to a Record, an ordered list of name/value members that marshals to a JSON
// object in declaration order.
//
// # Thread Safety
//
// Plans are immutable after Compile and safe for concurrent use.
package structure
