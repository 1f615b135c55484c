package compress

import (
	"bytes"
	"errors"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4FrameMagic starts every LZ4 frame, little-endian 0x184D2204.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

// LZ4Compressor writes LZ4 frames, the format of the lz4 tool.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data as one LZ4 frame.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.ConcurrencyOption(1)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress accepts both LZ4 frames and raw LZ4 blocks.
//
// A raw block does not record its decompressed size, so the output buffer
// starts at 4x the input and doubles on lz4.ErrInvalidSourceShortBuffer up to
// MaxDecompressedSize.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if bytes.HasPrefix(data, lz4FrameMagic) {
		r := lz4.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
		if err != nil {
			return nil, err
		}
		if len(out) > MaxDecompressedSize {
			return nil, errTooLarge("lz4")
		}

		return out, nil
	}

	for bufSize := len(data) * 4; bufSize <= MaxDecompressedSize; bufSize *= 2 {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, errTooLarge("lz4")
}
