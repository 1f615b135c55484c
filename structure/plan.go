package structure

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/dlf/endian"
	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
)

var engine = endian.GetLittleEndianEngine()

// Plan is a compiled type structure.
//
// The set of implementations is closed: Primitive, Composite and Opaque.
type Plan interface {
	// Size returns the minimum number of bytes the plan reads from a sample.
	Size() int
	// Decode decodes one sample. ok is false for plans that produce no value.
	Decode(b []byte) (value any, ok bool, err error)
	// String returns the type-structure string the plan was compiled from.
	String() string

	isPlan()
}

var (
	_ Plan = Primitive{}
	_ Plan = Composite{}
	_ Plan = Opaque{}
)

// Primitive decodes a single value from the start of the sample.
type Primitive struct {
	Kind format.Kind
}

func (Primitive) isPlan() {}

// Size returns the width of the primitive kind.
func (p Primitive) Size() int {
	return p.Kind.Size()
}

// Decode reads the primitive from the start of b.
func (p Primitive) Decode(b []byte) (any, bool, error) {
	if len(b) < p.Kind.Size() {
		return nil, false, fmt.Errorf("%w: %s needs %d bytes, have %d", errs.ErrShortValue, p.Kind, p.Kind.Size(), len(b))
	}

	return readKind(p.Kind, b), true, nil
}

func (p Primitive) String() string {
	return p.Kind.String()
}

// Field is one member of a composite plan.
type Field struct {
	Name   string
	Kind   format.Kind
	Offset uint32
}

// end returns the first byte past the field.
func (f Field) end() int {
	return int(f.Offset) + f.Kind.Size()
}

// Composite decodes a set of named members, each at its own offset.
type Composite struct {
	Name   string
	Fields []Field
}

func (Composite) isPlan() {}

// Size returns the end of the furthest member.
func (c Composite) Size() int {
	size := 0
	for _, f := range c.Fields {
		size = max(size, f.end())
	}

	return size
}

// Decode reads every member at base+offset and returns them as a Record in
// declaration order.
func (c Composite) Decode(b []byte) (any, bool, error) {
	if size := c.Size(); len(b) < size {
		return nil, false, fmt.Errorf("%w: %s needs %d bytes, have %d", errs.ErrShortValue, c.Name, size, len(b))
	}

	rec := make(Record, len(c.Fields))
	for i, f := range c.Fields {
		rec[i] = Member{Name: f.Name, Value: readKind(f.Kind, b[f.Offset:])}
	}

	return rec, true, nil
}

func (c Composite) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	for _, f := range c.Fields {
		fmt.Fprintf(&sb, ";%s:%s:%d", f.Name, f.Kind, f.Offset)
	}

	return sb.String()
}

// Opaque marks a sample whose bytes are skipped.
type Opaque struct {
	Structure string
}

func (Opaque) isPlan() {}

// Size is zero: an opaque sample may have any size.
func (Opaque) Size() int {
	return 0
}

// Decode never yields a value.
func (Opaque) Decode([]byte) (any, bool, error) {
	return nil, false, nil
}

func (o Opaque) String() string {
	return o.Structure
}

// Validate checks that a sample of typeSize bytes can hold everything plan reads.
//
// A primitive must match typeSize exactly. Composite members must fit inside
// typeSize; trailing padding is allowed. Opaque plans accept any size.
func Validate(plan Plan, typeSize uint32) error {
	switch p := plan.(type) {
	case Primitive:
		if uint64(p.Size()) != uint64(typeSize) {
			return fmt.Errorf("%w: %s is %d bytes, declared %d", errs.ErrTypeSizeMismatch, p.Kind, p.Size(), typeSize)
		}
	case Composite:
		if uint64(p.Size()) > uint64(typeSize) {
			return fmt.Errorf("%w: %s members span %d bytes, declared %d", errs.ErrTypeSizeMismatch, p.Name, p.Size(), typeSize)
		}
	}

	return nil
}

// readKind reads one value of kind k from the start of b. The caller guarantees
// len(b) >= k.Size().
func readKind(k format.Kind, b []byte) any {
	switch k {
	case format.KindUint8:
		return b[0]
	case format.KindBool:
		return b[0] != 0
	case format.KindUint16:
		return engine.Uint16(b)
	case format.KindUint32:
		return engine.Uint32(b)
	case format.KindUint64:
		return engine.Uint64(b)
	case format.KindInt8:
		return int8(b[0]) //nolint:gosec
	case format.KindInt16:
		return int16(engine.Uint16(b)) //nolint:gosec
	case format.KindInt32:
		return int32(engine.Uint32(b)) //nolint:gosec
	case format.KindInt64:
		return int64(engine.Uint64(b)) //nolint:gosec
	case format.KindFloat:
		return math.Float32frombits(engine.Uint32(b))
	case format.KindDouble:
		return math.Float64frombits(engine.Uint64(b))
	default:
		return nil
	}
}
