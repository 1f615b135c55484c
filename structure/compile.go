package structure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/format"
)

// Compile parses a type-structure string into a Plan.
//
// Returns:
//   - Plan: Opaque for a leading '!', Primitive for an exact keyword, Composite otherwise
//   - error: ErrUnknownPrimitiveType for an unknown member type or for a
//     string that is neither opaque, a keyword nor a ';' list,
//     ErrMalformedStructureDescriptor for a member that is not name:type:offset
func Compile(s string) (Plan, error) {
	if strings.HasPrefix(s, "!") {
		return Opaque{Structure: s}, nil
	}

	if kind, ok := format.ParseKind(s); ok {
		return Primitive{Kind: kind}, nil
	}

	if !strings.Contains(s, ";") {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownPrimitiveType, s)
	}

	tokens := strings.Split(s, ";")
	c := Composite{Name: tokens[0], Fields: make([]Field, 0, len(tokens)-1)}

	for i, tok := range tokens[1:] {
		if tok == "" {
			continue
		}

		field, err := parseMember(tok)
		if err != nil {
			return nil, fmt.Errorf("member %d of %q: %w", i, c.Name, err)
		}
		c.Fields = append(c.Fields, field)
	}

	return c, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// structure strings known at compile time.
func MustCompile(s string) Plan {
	p, err := Compile(s)
	if err != nil {
		panic(err)
	}

	return p
}

func parseMember(tok string) (Field, error) {
	parts := strings.Split(tok, ":")
	if len(parts) != 3 {
		return Field{}, fmt.Errorf("%w: %q has %d parts, want name:type:offset",
			errs.ErrMalformedStructureDescriptor, tok, len(parts))
	}

	kind, ok := format.ParseKind(parts[1])
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", errs.ErrUnknownPrimitiveType, parts[1])
	}

	off, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return Field{}, fmt.Errorf("%w: bad offset %q", errs.ErrMalformedStructureDescriptor, parts[2])
	}

	return Field{Name: parts[0], Kind: kind, Offset: uint32(off)}, nil
}
