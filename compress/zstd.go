package compress

// ZstdCompressor writes Zstandard frames, the format of the zstd tool.
//
// The default build uses the pure Go github.com/klauspost/compress/zstd. Build
// with cgo and the gozstd tag to use the libzstd binding
// github.com/valyala/gozstd instead; both read and write the same frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
