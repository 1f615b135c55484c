package source

import "context"

// MemorySource serves streams that were already fetched. A nil field is
// reported as a missing stream.
type MemorySource struct {
	MetaData   []byte
	PolledData []byte
	EventData  []byte
}

var _ Source = (*MemorySource)(nil)

func (s *MemorySource) Meta(ctx context.Context) ([]byte, error) {
	return s.get(ctx, s.MetaData, MetaFile)
}

func (s *MemorySource) Polled(ctx context.Context) ([]byte, error) {
	return s.get(ctx, s.PolledData, PolledFile)
}

func (s *MemorySource) Events(ctx context.Context) ([]byte, error) {
	return s.get(ctx, s.EventData, EventFile)
}

func (s *MemorySource) get(ctx context.Context, data []byte, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, notFound(name)
	}

	return data, nil
}
