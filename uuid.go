package sdp

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// UUID holds the wire-order (big-endian) bytes of a Bluetooth UUID.
// Valid lengths are 2 (16-bit), 4 (32-bit) and 16 (128-bit).
type UUID []byte

// BaseUUID is the Bluetooth-reserved 128-bit template that 16- and
// 32-bit UUIDs expand into: 0000xxxx-0000-1000-8000-00805F9B34FB.
var BaseUUID = UUID{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0x80, 0x5F, 0x9B, 0x34, 0xFB,
}

// UUID16 builds a 16-bit short-form UUID.
func UUID16(v uint16) UUID {
	b := make(UUID, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// UUID32 builds a 32-bit short-form UUID.
func UUID32(v uint32) UUID {
	b := make(UUID, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// Len returns the number of value bytes (2, 4 or 16).
func (u UUID) Len() int { return len(u) }

// Equal reports whether two UUIDs carry the same bytes. It does not
// expand short-form UUIDs before comparing.
func (u UUID) Equal(other UUID) bool {
	return bytes.Equal(u, other)
}

// String renders the UUID as hex, without dashes for short forms and
// in the canonical 8-4-4-4-12 grouping for 128-bit ones.
func (u UUID) String() string {
	switch len(u) {
	case 16:
		s := hex.EncodeToString(u)
		return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
	default:
		return hex.EncodeToString(u)
	}
}

// MarshalJSON renders the UUID as its hex string form (profile files
// read like "uuids": ["1105"], not base64 blobs).
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON parses a hex string, with or without the 128-bit
// dash grouping, back into a UUID.
func (u *UUID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.ReplaceAll(s, "-", "")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	*u = raw
	return nil
}

// IsBaseUUID reports whether the trailing 12 bytes of a 128-bit value
// match BaseUUID, i.e. it is a short-form UUID expanded to 128 bits.
func IsBaseUUID(b []byte) bool {
	return len(b) == 16 && bytes.Equal(b[4:16], BaseUUID[4:16])
}
