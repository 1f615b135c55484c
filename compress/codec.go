package compress

import (
	"fmt"
	"strings"
	"time"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
)

// MaxDecompressedSize bounds the output of every decompressor. A DLF stream
// larger than this is almost certainly corrupt input.
const MaxDecompressedSize = 1 << 30

// Compressor compresses a whole DLF stream.
type Compressor interface {
	// Compress returns the compressed form of data. The input is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a stream produced by the matching Compressor, or by
// the reference command line tool of the same algorithm.
//
// Thread Safety: implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress returns the original bytes of data.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression, as reported by the pack command.
type CompressionStats struct {
	Algorithm      format.CompressionType
	OriginalSize   int64
	CompressedSize int64
	Elapsed        time.Duration
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns 0 when the original size is zero.
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, compressionType)
}

// Decompress decompresses data with the built-in codec of compressionType.
func Decompress(compressionType format.CompressionType, data []byte) ([]byte, error) {
	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, err
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", compressionType, err)
	}

	return out, nil
}

// CompressWithStats compresses data and reports the sizes and time taken.
func CompressWithStats(compressionType format.CompressionType, data []byte) ([]byte, CompressionStats, error) {
	stats := CompressionStats{Algorithm: compressionType, OriginalSize: int64(len(data))}

	codec, err := GetCodec(compressionType)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	out, err := codec.Compress(data)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", compressionType, err)
	}
	stats.Elapsed = time.Since(start)
	stats.CompressedSize = int64(len(out))

	return out, stats, nil
}

// FromFileName returns the compression implied by the suffix of name, and
// name without that suffix.
//
//	FromFileName("polled.dlf.zst") // CompressionZstd, "polled.dlf"
//	FromFileName("polled.dlf")     // CompressionNone, "polled.dlf"
func FromFileName(name string) (format.CompressionType, string) {
	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		if base, ok := strings.CutSuffix(name, ct.Suffix()); ok {
			return ct, base
		}
	}

	return format.CompressionNone, name
}

// errTooLarge reports output that would exceed MaxDecompressedSize.
func errTooLarge(algorithm string) error {
	return fmt.Errorf("%s: decompressed size exceeds %d bytes", algorithm, MaxDecompressedSize)
}
