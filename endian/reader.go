package endian

import (
	"bytes"
	"fmt"

	"github.com/arloliu/dlf/errs"
)

// Reader is a bounds-checked cursor over a byte slice.
//
// Every read either consumes exactly the requested bytes or fails with
// errs.ErrTruncatedHeader and leaves the cursor untouched, so header parsers
// can report short input without panicking on slice bounds.
type Reader struct {
	data   []byte
	off    int
	engine EndianEngine
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte, engine EndianEngine) *Reader {
	return &Reader{data: data, engine: engine}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Rest returns the unread bytes without copying them.
func (r *Reader) Rest() []byte {
	return r.data[r.off:]
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// Uint16 reads a 2-byte unsigned integer.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// Uint32 reads a 4-byte unsigned integer.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

// Uint64 reads an 8-byte unsigned integer.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

// Bytes reads n bytes. The returned slice aliases the underlying data.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrTruncatedHeader, n, r.off, r.Remaining())
	}

	b := r.data[r.off : r.off+n]
	r.off += n

	return b, nil
}

// BytesU32 reads n bytes for a size taken from the input. The bound is checked
// in uint64, so a size above math.MaxInt cannot wrap on 32-bit platforms.
func (r *Reader) BytesU32(n uint32) ([]byte, error) {
	if uint64(n) > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			errs.ErrTruncatedHeader, n, r.off, r.Remaining())
	}

	return r.Bytes(int(n))
}

// CString reads a zero-terminated string and consumes its terminator.
func (r *Reader) CString() (string, error) {
	rest := r.data[r.off:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", errs.ErrTruncatedHeader, r.off)
	}

	s := string(rest[:end])
	r.off += end + 1

	return s, nil
}
