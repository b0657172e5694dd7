package ble

import "net"

// Addr is a Bluetooth device address.
type Addr interface {
	net.Addr
	Bytes() []byte
}

// AuthData carries the out-of-band pairing material an upper layer (or a
// test) supplies when kicking off a security upgrade. Full SM pairing is
// outside this module's scope; this is exactly the sliver of it that
// Conn.Pair consumes.
type AuthData struct {
	OOBData []byte
}
