// Package compress provides the codecs used to store and transfer DLF streams.
//
// Loggers and upload services often keep the three streams of a run
// compressed on disk or behind HTTP. The source package detects the
// compression from the file suffix and restores the raw bytes before any
// header is parsed, so decoders only ever see uncompressed streams.
//
// # Supported Algorithms
//
//	Type                     | Suffix | Format
//	-------------------------|--------|------------------------------------
//	format.CompressionNone   |        | raw bytes
//	format.CompressionZstd   | .zst   | Zstandard frame
//	format.CompressionS2     | .s2    | S2 stream (raw blocks also accepted)
//	format.CompressionLZ4    | .lz4   | LZ4 frame (raw blocks also accepted)
//
// The compressors write the same formats as the zstd, s2c and lz4 tools, so
// files packed by the dlf command and files compressed by hand are
// interchangeable.
//
// # Usage
//
//	ct, base := compress.FromFileName("polled.dlf.zst")
//	raw, err := compress.Decompress(ct, data)
//
// Decompressed output is limited to MaxDecompressedSize.
//
// # Build Tags
//
// Zstd uses the pure Go github.com/klauspost/compress/zstd by default. Building
// with cgo enabled and -tags gozstd switches to github.com/valyala/gozstd.
package compress
