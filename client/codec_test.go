package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/btsdp"
)

func TestGetLenFromTypeFixed(t *testing.T) {
	// UINT16: size class 1, no explicit length field.
	buf := []byte{byte(classUint<<3) | 1, 0xAB, 0xCD, 0x00}
	typ := buf[0]
	start, n, err := getLenFromType(buf, 1, len(buf), typ)
	require.NoError(t, err)
	require.Equal(t, 1, start)
	require.Equal(t, 2, n)
}

func TestGetLenFromTypeByteLen(t *testing.T) {
	// TEXT with an 8-bit length field (size class 5): tag, len=3, payload.
	buf := []byte{byte(classText<<3) | 5, 3, 'a', 'b', 'c'}
	start, n, err := getLenFromType(buf, 1, len(buf), buf[0])
	require.NoError(t, err)
	require.Equal(t, 2, start)
	require.Equal(t, 3, n)
}

func TestGetLenFromTypeTruncated(t *testing.T) {
	// Declares a 16-bit length field but only one byte follows.
	buf := []byte{byte(classSeq<<3) | 6, 0x00}
	_, _, err := getLenFromType(buf, 1, len(buf), buf[0])
	require.Equal(t, ErrBadLength, err)
}

func TestGetLenFromTypePayloadBeyondEnd(t *testing.T) {
	// Declares a 5-byte payload, end only leaves room for 3.
	buf := []byte{byte(classText<<3) | 5, 5, 'a', 'b', 'c'}
	_, _, err := getLenFromType(buf, 1, len(buf), buf[0])
	require.Equal(t, ErrBadLength, err)
}

func TestGetLenFromTypeNil(t *testing.T) {
	// NIL is always zero-length regardless of its nominal size class.
	buf := []byte{byte(classNil << 3)}
	start, n, err := getLenFromType(buf, 1, len(buf), buf[0])
	require.NoError(t, err)
	require.Equal(t, 1, start)
	require.Equal(t, 0, n)
}

func TestBuildUUIDSeqMixedWidths(t *testing.T) {
	uuids := []btsdp.UUID{
		btsdp.UUID16(0x1101),
		btsdp.UUID32(0x00001105),
	}
	out := buildUUIDSeq(make([]byte, 64), 64, uuids, btsdp.NopLogger{})

	require.Equal(t, byte(classSeq<<3)|5, out[0])
	require.Equal(t, byte(len(out)-2), out[1])

	// First entry: 16-bit UUID.
	require.Equal(t, byte(classUUID<<3)|1, out[2])
	require.Equal(t, []byte{0x11, 0x01}, out[3:5])
	// Second entry: 32-bit UUID.
	require.Equal(t, byte(classUUID<<3)|2, out[5])
}

func TestBuildAttribSeqWildcard(t *testing.T) {
	out := buildAttribSeq(make([]byte, 32), nil)
	require.Equal(t, byte(classSeq<<3)|5, out[0])
	require.Equal(t, byte(classUint<<3)|2, out[2])
	require.Equal(t, []byte{0x00, 0x00, 0xFF, 0xFF}, out[3:7])
}

// TestBuildUUIDSeqRoundTrip encodes a mixed-width UUID set with
// buildUUIDSeq, then decodes each entry back the way addAttr does
// (getLenFromType plus storeUUID), checking the result matches the
// input modulo the 128-bit compression rule: a base-UUID-form 128-bit
// value collapses to 16 or 32 bits, and a non-base 128-bit value comes
// back unchanged.
func TestBuildUUIDSeqRoundTrip(t *testing.T) {
	base128For := func(v uint32) btsdp.UUID {
		full := append(btsdp.UUID(nil), btsdp.BaseUUID...)
		full[0] = byte(v >> 24)
		full[1] = byte(v >> 16)
		full[2] = byte(v >> 8)
		full[3] = byte(v)
		return full
	}

	opaque128 := btsdp.UUID{
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x01,
	}

	uuids := []btsdp.UUID{
		btsdp.UUID16(0x1101),
		btsdp.UUID32(0x00011105),
		base128For(0x00001200), // base-form 128-bit, compresses to 16 bits
		base128For(0x00011300), // base-form 128-bit, compresses to 32 bits
		opaque128,
	}

	out := buildUUIDSeq(make([]byte, 128), 128, uuids, btsdp.NopLogger{})

	typ := out[0]
	start, seqLen, err := getLenFromType(out, 1, len(out), typ)
	require.NoError(t, err)

	var got []Attr
	p := start
	end := start + seqLen
	for p < end {
		elemTyp := out[p]
		p++
		payloadStart, n, err := getLenFromType(out, p, end, elemTyp)
		require.NoError(t, err)

		var a Attr
		storeUUID(&a, out, payloadStart, n)
		got = append(got, a)
		p = payloadStart + n
	}

	require.Len(t, got, len(uuids))

	require.Equal(t, 2, got[0].Len)
	require.Equal(t, uint16(0x1101), got[0].U16)

	require.Equal(t, 4, got[1].Len)
	require.Equal(t, uint32(0x00011105), got[1].U32)

	// A base-UUID-form 128-bit value compresses to 16 bits.
	require.Equal(t, 2, got[2].Len)
	require.Equal(t, uint16(0x1200), got[2].U16)

	// A base-UUID-form 128-bit value whose short form doesn't fit in
	// 16 bits compresses to 32 bits instead.
	require.Equal(t, 4, got[3].Len)
	require.Equal(t, uint32(0x00011300), got[3].U32)

	// A non-base 128-bit value is carried through unchanged.
	require.Equal(t, 16, got[4].Len)
	require.Equal(t, []byte(opaque128), got[4].Bytes)
}

func TestBuildAttribSeqExplicit(t *testing.T) {
	out := buildAttribSeq(make([]byte, 32), []uint16{0x0000, 0x0004})
	require.Equal(t, byte(classSeq<<3)|5, out[0])
	require.Equal(t, byte(classUint<<3)|1, out[2])
	require.Equal(t, []byte{0x00, 0x00}, out[3:5])
	require.Equal(t, byte(classUint<<3)|1, out[5])
	require.Equal(t, []byte{0x00, 0x04}, out[6:8])
}
