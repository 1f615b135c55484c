// Package source provides the byte streams of a DLF run.
//
// A run is stored as three files written by the logger: meta.dlf, polled.dlf
// and event.dlf. Where they live depends on the deployment (an SD card dump on
// disk, an upload service behind HTTP, buffers already in memory), so decoders
// depend only on the Source interface.
//
// Sources return raw, uncompressed bytes. DirSource and HTTPSource restore
// streams stored with any codec of the compress package.
package source

import (
	"context"
	"fmt"

	"github.com/arloliu/dlf/errs"
)

// File names used by the logger for the streams of a run.
const (
	MetaFile   = "meta.dlf"
	PolledFile = "polled.dlf"
	EventFile  = "event.dlf"
)

// Source provides the three streams of one run.
//
// Each call returns a snapshot of the stream; a live run yields longer
// snapshots on later calls. A stream that does not exist is reported as
// errs.ErrStreamNotFound.
type Source interface {
	Meta(ctx context.Context) ([]byte, error)
	Polled(ctx context.Context) ([]byte, error)
	Events(ctx context.Context) ([]byte, error)
}

// Stream identifies one of the streams of a run.
type Stream uint8

const (
	StreamMeta Stream = iota
	StreamPolled
	StreamEvents
)

// FileName returns the logger's file name for the stream.
func (s Stream) FileName() string {
	switch s {
	case StreamMeta:
		return MetaFile
	case StreamPolled:
		return PolledFile
	case StreamEvents:
		return EventFile
	default:
		return ""
	}
}

func (s Stream) String() string {
	switch s {
	case StreamMeta:
		return "meta"
	case StreamPolled:
		return "polled"
	case StreamEvents:
		return "events"
	default:
		return "Unknown"
	}
}

// Fetch reads one stream from src.
func Fetch(ctx context.Context, src Source, stream Stream) ([]byte, error) {
	switch stream {
	case StreamMeta:
		return src.Meta(ctx)
	case StreamPolled:
		return src.Polled(ctx)
	case StreamEvents:
		return src.Events(ctx)
	default:
		return nil, fmt.Errorf("%w: stream %d", errs.ErrStreamNotFound, stream)
	}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %s", errs.ErrStreamNotFound, name)
}
