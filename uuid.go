package ble

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// UUID is either a 16-bit or a 128-bit Bluetooth UUID, stored little-endian
// the way it's carried on the wire. Equality is exact byte comparison.
type UUID []byte

// UUID16 constructs a 16-bit UUID from its numeric value.
func UUID16(v uint16) UUID {
	u := make(UUID, 2)
	binary.LittleEndian.PutUint16(u, v)
	return u
}

// UUID128 constructs a 128-bit UUID from 16 little-endian bytes. It panics if
// b is not exactly 16 bytes long, mirroring how malformed constant literals
// are caught at init time rather than deep in protocol code.
func UUID128(b []byte) UUID {
	if len(b) != 16 {
		panic(fmt.Sprintf("ble: UUID128 requires 16 bytes, got %d", len(b)))
	}
	u := make(UUID, 16)
	copy(u, b)
	return u
}

// Len16 reports whether u is a 16-bit UUID.
func (u UUID) Len16() bool { return len(u) == 2 }

// Len128 reports whether u is a 128-bit UUID.
func (u UUID) Len128() bool { return len(u) == 16 }

// Valid reports whether u is a well-formed 16- or 128-bit UUID.
func (u UUID) Valid() bool { return len(u) == 2 || len(u) == 16 }

// Equal reports whether u and v are the same UUID.
func (u UUID) Equal(v UUID) bool {
	return bytes.Equal(u, v)
}

// String renders the UUID for logging: the 4-hex-digit form for 16-bit
// UUIDs, and full dashed hex for 128-bit UUIDs.
func (u UUID) String() string {
	switch len(u) {
	case 2:
		return fmt.Sprintf("%04x", binary.LittleEndian.Uint16(u))
	case 16:
		b := make([]byte, 16)
		for i, c := range u {
			b[15-i] = c
		}
		return fmt.Sprintf("%s-%s-%s-%s-%s",
			hex.EncodeToString(b[0:4]), hex.EncodeToString(b[4:6]),
			hex.EncodeToString(b[6:8]), hex.EncodeToString(b[8:10]),
			hex.EncodeToString(b[10:16]))
	default:
		return fmt.Sprintf("%x", []byte(u))
	}
}
