// Package errs defines the sentinel errors returned by the dlf packages.
//
// Errors are wrapped with additional context (field, stream index, keyword)
// using fmt.Errorf and %w, so callers should match them with errors.Is:
//
//	header, err := dlf.ParseLogfile(data, format.StreamPolled)
//	if errors.Is(err, errs.ErrTruncatedHeader) {
//	    // file is shorter than its own header
//	}
//
// Structural and schema errors are fatal for the file that produced them. A
// short trailing data block is never reported as an error: logs are routinely
// read while the logger is still appending to them.
package errs

import "errors"

// Header errors.
var (
	// ErrTruncatedHeader is returned when a fixed header field, a zero-terminated
	// string, or the declared meta payload runs past the end of the input.
	ErrTruncatedHeader = errors.New("truncated header")
	// ErrUnknownStreamType is returned when the stream type tag is neither polled (0) nor event (1).
	ErrUnknownStreamType = errors.New("unknown stream type")
	// ErrStreamTypeMismatch is returned when a logfile header declares a different
	// stream type than the one the caller asked to parse.
	ErrStreamTypeMismatch = errors.New("stream type mismatch")
	// ErrTypeSizeMismatch is returned when a stream's declared type size disagrees
	// with the size implied by its type structure.
	ErrTypeSizeMismatch = errors.New("type size does not match type structure")
)

// Type structure errors.
var (
	// ErrUnknownPrimitiveType is returned for a type keyword outside the primitive set.
	ErrUnknownPrimitiveType = errors.New("unknown primitive type")
	// ErrMalformedStructureDescriptor is returned for a composite member token
	// that is not of the form name:type:offset.
	ErrMalformedStructureDescriptor = errors.New("malformed structure descriptor")
	// ErrShortValue is returned when a value slice is shorter than its plan requires.
	ErrShortValue = errors.New("value slice too short for plan")
)

// Schedule errors.
var (
	// ErrInvalidScheduleInterval is returned for a polled stream with a zero interval.
	ErrInvalidScheduleInterval = errors.New("invalid schedule interval")
	// ErrInvalidSchedulePhase is returned for a polled stream whose phase is not below its interval.
	ErrInvalidSchedulePhase = errors.New("invalid schedule phase")
	// ErrOffsetOverflow is returned when a byte offset is not representable in 64 bits.
	ErrOffsetOverflow = errors.New("byte offset overflows uint64")
)

// Decoder errors.
var (
	// ErrInvalidStreamIndex is returned when an event record references a stream
	// index outside the header's stream list. It signals corruption, not truncation.
	ErrInvalidStreamIndex = errors.New("invalid stream index")
	// ErrNotPolledStream is returned when a polled decoder is built from an event header.
	ErrNotPolledStream = errors.New("logfile is not a polled stream")
	// ErrNotEventStream is returned when an event decoder is built from a polled header.
	ErrNotEventStream = errors.New("logfile is not an event stream")
	// ErrInvalidDownsample is returned for a zero downsample factor.
	ErrInvalidDownsample = errors.New("downsample factor must be positive")
	// ErrInvalidByteOffset is returned when an event resume offset lies beyond the data region.
	ErrInvalidByteOffset = errors.New("byte offset beyond data region")
	// ErrUnknownStreamID is returned when a stream filter names an id the header does not declare.
	ErrUnknownStreamID = errors.New("unknown stream id")
)

// Source errors.
var (
	// ErrStreamNotFound is returned when a byte source has no data for a requested stream.
	ErrStreamNotFound = errors.New("stream not found in source")
	// ErrUnsupportedCompression is returned for an unknown compression type.
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)
