package sdp

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Addr is a 48-bit Bluetooth device address, stored most-significant
// byte first (the order SDP records carry them in the CCB).
type Addr [6]byte

// String renders the address as colon-separated hex, e.g. "AA:BB:CC:DD:EE:FF".
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Bytes returns the address as a 6-byte slice.
func (a Addr) Bytes() []byte {
	return a[:]
}

// ParseAddr parses a 6-byte slice into an Addr. It returns an error if
// b is not exactly 6 bytes.
func ParseAddr(b []byte) (Addr, error) {
	var a Addr
	if len(b) != 6 {
		return a, fmt.Errorf("sdp: invalid address length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseAddrString parses a colon- or dash-separated hex address, e.g.
// "AA:BB:CC:DD:EE:FF", the form command-line tools take one in.
func ParseAddrString(s string) (Addr, error) {
	var a Addr
	s = strings.NewReplacer(":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("sdp: invalid address %q: %w", s, err)
	}
	return ParseAddr(b)
}
