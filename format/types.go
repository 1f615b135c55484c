// Package format defines the small enumerations shared by the dlf packages.
package format

type (
	// StreamType identifies the kind of logfile: polled or event.
	StreamType uint8
	// Kind identifies a primitive value type of the type-structure language.
	Kind uint8
	// CompressionType identifies the codec wrapped around a stored DLF file.
	CompressionType uint8
)

const (
	StreamPolled StreamType = 0x0 // StreamPolled is a fixed-period sampled logfile.
	StreamEvent  StreamType = 0x1 // StreamEvent is an irregularly timed, tagged logfile.
)

const (
	KindUint8  Kind = iota + 1 // KindUint8 is uint8_t.
	KindBool                   // KindBool is bool, stored as one byte.
	KindUint16                 // KindUint16 is uint16_t.
	KindUint32                 // KindUint32 is uint32_t.
	KindUint64                 // KindUint64 is uint64_t.
	KindInt8                   // KindInt8 is int8_t.
	KindInt16                  // KindInt16 is int16_t.
	KindInt32                  // KindInt32 is int32_t.
	KindInt64                  // KindInt64 is int64_t.
	KindFloat                  // KindFloat is a 4-byte IEEE 754 float.
	KindDouble                 // KindDouble is an 8-byte IEEE 754 double.
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// keywords maps type-structure keywords to kinds.
var keywords = map[string]Kind{
	"uint8_t":  KindUint8,
	"bool":     KindBool,
	"uint16_t": KindUint16,
	"uint32_t": KindUint32,
	"uint64_t": KindUint64,
	"int8_t":   KindInt8,
	"int16_t":  KindInt16,
	"int32_t":  KindInt32,
	"int64_t":  KindInt64,
	"float":    KindFloat,
	"double":   KindDouble,
}

// ParseKind resolves a type-structure keyword such as "uint32_t" or "double".
func ParseKind(keyword string) (Kind, bool) {
	k, ok := keywords[keyword]
	return k, ok
}

// Size returns the encoded width of the kind in bytes, or 0 for an unknown kind.
func (k Kind) Size() int {
	switch k {
	case KindUint8, KindBool, KindInt8:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32, KindFloat:
		return 4
	case KindUint64, KindInt64, KindDouble:
		return 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "uint8_t"
	case KindBool:
		return "bool"
	case KindUint16:
		return "uint16_t"
	case KindUint32:
		return "uint32_t"
	case KindUint64:
		return "uint64_t"
	case KindInt8:
		return "int8_t"
	case KindInt16:
		return "int16_t"
	case KindInt32:
		return "int32_t"
	case KindInt64:
		return "int64_t"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	default:
		return "Unknown"
	}
}

func (s StreamType) String() string {
	switch s {
	case StreamPolled:
		return "polled"
	case StreamEvent:
		return "event"
	default:
		return "Unknown"
	}
}

// IsValid reports whether s is one of the defined stream types.
func (s StreamType) IsValid() bool {
	return s == StreamPolled || s == StreamEvent
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression resolves a compression name as used in configuration files
// and file suffixes: "", "none", "zstd"/"zst", "s2", "lz4".
func ParseCompression(name string) (CompressionType, bool) {
	switch name {
	case "", "none":
		return CompressionNone, true
	case "zstd", "zst":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

// Suffix returns the file name suffix used for files stored with this compression.
func (c CompressionType) Suffix() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}
