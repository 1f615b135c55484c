package endian

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/errs"
)

func TestReader_FixedFields(t *testing.T) {
	engine := GetLittleEndianEngine()

	var buf []byte
	buf = append(buf, 0x7f)
	buf = engine.AppendUint16(buf, 0x8414)
	buf = engine.AppendUint32(buf, 1763485651)
	buf = engine.AppendUint64(buf, 1<<40+3)

	r := NewReader(buf, engine)

	u8, err := r.Uint8()
	require.NoError(t, err)
	require.Equal(t, uint8(0x7f), u8)

	u16, err := r.Uint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x8414), u16)

	u32, err := r.Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(1763485651), u32)

	u64, err := r.Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(1<<40+3), u64)

	require.Equal(t, len(buf), r.Offset())
	require.Zero(t, r.Remaining())
	require.Empty(t, r.Rest())
}

func TestReader_ShortRead(t *testing.T) {
	r := NewReader([]byte{1, 2, 3}, GetLittleEndianEngine())

	_, err := r.Uint32()
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
	require.Equal(t, 0, r.Offset(), "failed read must not move the cursor")

	v, err := r.Uint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0201), v)

	_, err = r.Uint64()
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)

	_, err = r.Bytes(-1)
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
}

func TestReader_BytesU32(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4}, GetLittleEndianEngine())

	_, err := r.BytesU32(math.MaxUint32)
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
	_, err = r.BytesU32(1 << 31)
	require.ErrorIs(t, err, errs.ErrTruncatedHeader)
	require.Zero(t, r.Offset())

	b, err := r.BytesU32(3)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, b)
	require.Equal(t, 1, r.Remaining())
}

func TestReader_CString(t *testing.T) {
	t.Run("Terminated", func(t *testing.T) {
		r := NewReader([]byte("double\x00gps\x00\x00tail"), GetLittleEndianEngine())

		s, err := r.CString()
		require.NoError(t, err)
		require.Equal(t, "double", s)

		s, err = r.CString()
		require.NoError(t, err)
		require.Equal(t, "gps", s)

		s, err = r.CString()
		require.NoError(t, err)
		require.Empty(t, s)

		require.Equal(t, []byte("tail"), r.Rest())
	})

	t.Run("Unterminated", func(t *testing.T) {
		r := NewReader([]byte("double"), GetLittleEndianEngine())

		_, err := r.CString()
		require.ErrorIs(t, err, errs.ErrTruncatedHeader)
		require.Equal(t, 0, r.Offset())
	})
}

func TestEngines(t *testing.T) {
	require.True(t, IsLittleEndian(GetLittleEndianEngine()))
	require.False(t, IsLittleEndian(GetBigEndianEngine()))

	b := GetBigEndianEngine().AppendUint16(nil, 0x0102)
	require.Equal(t, []byte{0x01, 0x02}, b)
}
