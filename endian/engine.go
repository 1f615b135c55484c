// Package endian provides byte order utilities for binary decoding of DLF streams.
//
// DLF files are written by little-endian firmware, so every multi-byte field in
// a meta, polled, or events stream is little-endian. The EndianEngine interface
// combines binary.ByteOrder and binary.AppendByteOrder so the same engine serves
// both the decoders and the test fixture builders.
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	r := endian.NewReader(data, engine)
//	magic, err := r.Uint16()
//	name, err := r.CString()
//
// # Thread Safety
//
// Engines are immutable and safe for concurrent use. A Reader carries a cursor
// and must not be shared between goroutines.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by the DLF format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsLittleEndian reports whether engine is the little-endian engine.
func IsLittleEndian(engine EndianEngine) bool {
	return engine == binary.LittleEndian
}
