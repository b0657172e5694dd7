package ble

// Handle is a 16-bit attribute handle. 0x0000 is reserved and never valid;
// the valid range is [0x0001, 0xFFFF].
type Handle uint16

// Valid reports whether h is in the assignable handle range.
func (h Handle) Valid() bool {
	return h >= MinHandle
}

// InvalidHandle is the reserved zero handle, used as a sentinel in error
// responses that don't refer to a particular attribute.
const InvalidHandle = Handle(0x0000)
