package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/s2"
)

// s2StreamMagic starts every S2 or Snappy framed stream.
var s2StreamMagic = []byte("\xff\x06\x00\x00")

// S2Compressor writes S2 framed streams, the format of the s2c tool.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses the input data as one S2 stream.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := s2.NewWriter(&buf, s2.WriterConcurrency(1))
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress accepts both S2 streams and raw S2 blocks.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if !bytes.HasPrefix(data, s2StreamMagic) {
		n, err := s2.DecodedLen(data)
		if err != nil {
			return nil, err
		}
		if n > MaxDecompressedSize {
			return nil, errTooLarge("s2")
		}

		return s2.Decode(nil, data)
	}

	r := s2.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(io.LimitReader(r, MaxDecompressedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecompressedSize {
		return nil, errTooLarge("s2")
	}

	return out, nil
}
