package client

import (
	"encoding/binary"
	"errors"

	"github.com/corvid-labs/btsdp"
)

// ElementType is one of SDP's eight element classes (spec §3), taken
// from the high 5 bits of a type descriptor byte.
type ElementType uint8

const (
	TypeUint ElementType = iota
	TypeInt
	TypeUUID
	TypeBool
	TypeText
	TypeURL
	TypeSeq
	TypeAlt
	TypeUnknown
)

// raw element classes, as they appear in the high 5 bits of the wire
// type-descriptor byte.
const (
	classNil  = 0
	classUint = 1
	classInt  = 2
	classUUID = 3
	classBool = 5
	classSeq  = 6
	classAlt  = 7
	classURL  = 8
	classText = 4
)

func elementType(classBits uint8) ElementType {
	switch classBits {
	case classUint:
		return TypeUint
	case classInt:
		return TypeInt
	case classUUID:
		return TypeUUID
	case classBool:
		return TypeBool
	case classText:
		return TypeText
	case classURL:
		return TypeURL
	case classSeq:
		return TypeSeq
	case classAlt:
		return TypeAlt
	default:
		return TypeUnknown
	}
}

// ErrBadLength is returned by getLenFromType when the length field, or
// the payload it describes, would run past the supplied end of buffer.
var ErrBadLength = errors.New("sdp: truncated or out-of-bounds element length")

// getLenFromType is the single bottleneck for bounds safety described
// in spec §4.1. buf is the whole reassembled message; pos points just
// past the type descriptor byte; end bounds how far this element (and
// its length field) may run — it may be narrower than len(buf) when
// decoding a nested sub-sequence.
//
// It returns the offset where the payload begins and the payload
// length. The caller must still separately check payloadStart+n
// against whatever *its* bound is (end, or a tighter parent bound) —
// getLenFromType only guarantees the length field itself and the
// payload it describes both fit within end.
func getLenFromType(buf []byte, pos, end int, typ byte) (payloadStart, n int, err error) {
	sizeClass := typ & 0x07

	switch sizeClass {
	case 0:
		return fixedLen(end, typ, pos, 1)
	case 1:
		return fixedLen(end, typ, pos, 2)
	case 2:
		return fixedLen(end, typ, pos, 4)
	case 3:
		return fixedLen(end, typ, pos, 8)
	case 4:
		return fixedLen(end, typ, pos, 16)
	case 5:
		if pos+1 > end || pos+1 > len(buf) {
			return 0, 0, ErrBadLength
		}
		n = int(buf[pos])
		payloadStart = pos + 1
	case 6:
		if pos+2 > end || pos+2 > len(buf) {
			return 0, 0, ErrBadLength
		}
		n = int(binary.BigEndian.Uint16(buf[pos : pos+2]))
		payloadStart = pos + 2
	case 7:
		if pos+4 > end || pos+4 > len(buf) {
			return 0, 0, ErrBadLength
		}
		n = int(binary.BigEndian.Uint32(buf[pos : pos+4]))
		payloadStart = pos + 4
	default:
		return 0, 0, ErrBadLength
	}

	if n < 0 || payloadStart+n > end || payloadStart+n > len(buf) {
		return 0, 0, ErrBadLength
	}
	return payloadStart, n, nil
}

// fixedLen handles size classes 0-4: the NIL type carries zero bytes
// regardless of its nominal size class; every other type carries
// exactly width bytes and consumes no separate length field.
func fixedLen(end int, typ byte, pos, width int) (int, int, error) {
	if typ>>3 == classNil {
		width = 0
	}
	if pos+width > end {
		return 0, 0, ErrBadLength
	}
	return pos, width, nil
}

// buildUUIDSeq emits a DATA_ELE_SEQ header followed by each UUID
// encoded at its natural width (2, 4 or 16 bytes). It mirrors
// sdpu_build_uuid_seq: UUIDs of any other length are skipped, and
// encoding stops (without writing past out) once bytesLeft can't hold
// the next entry. It returns the slice written so far.
func buildUUIDSeq(out []byte, bytesLeft int, uuids []btsdp.UUID, log btsdp.Logger) []byte {
	if bytesLeft < 2 || len(out) < 2 {
		log.Warnf("sdp: no space for uuid sequence header")
		return out[:0]
	}

	p := out[2:]
	bytesLeft -= 2
	written := 2

	for _, u := range uuids {
		n := u.Len()
		entryLen := n + 1
		if entryLen > bytesLeft || entryLen > len(p) {
			log.Warnf("sdp: too many uuids for output buffer")
			break
		}
		switch n {
		case 2:
			p[0] = byte(classUUID<<3) | 1
			copy(p[1:3], u)
			p = p[3:]
			written += 3
		case 4:
			p[0] = byte(classUUID<<3) | 2
			copy(p[1:5], u)
			p = p[5:]
			written += 5
		case 16:
			p[0] = byte(classUUID<<3) | 4
			copy(p[1:17], u)
			p = p[17:]
			written += 17
		default:
			log.Warnf("sdp: skipping uuid of invalid length %d", n)
			continue
		}
		bytesLeft -= entryLen
	}

	out[0] = byte(classSeq<<3) | 5
	out[1] = byte(written - 2)
	return out[:written]
}

// buildAttribSeq emits an attribute-ID filter sequence: a single
// UINT32 wildcard range 0x0000_0000-0x0000_FFFF covering every
// attribute ID when ids is empty, otherwise a sequence of 16-bit
// UINT entries, one per id. It mirrors sdpu_build_attrib_seq.
func buildAttribSeq(out []byte, ids []uint16) []byte {
	buf := make([]byte, 0, 2+len(ids)*3+6)
	buf = append(buf, byte(classSeq<<3)|5, 0) // header, length placeholder

	if len(ids) == 0 {
		buf = append(buf, byte(classUint<<3)|2, 0x00, 0x00, 0xFF, 0xFF)
	} else {
		for _, id := range ids {
			buf = append(buf, byte(classUint<<3)|1, byte(id>>8), byte(id))
		}
	}

	buf[1] = byte(len(buf) - 2)
	n := copy(out, buf)
	return out[:n]
}
