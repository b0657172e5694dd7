package ble

// SecurityLevel is the monotone link-security ladder: NoSecurity <
// Encrypted < Authenticated. Comparisons use plain <, <=, etc.
type SecurityLevel int

const (
	NoSecurity SecurityLevel = iota
	Encrypted
	Authenticated
)

func (l SecurityLevel) String() string {
	switch l {
	case NoSecurity:
		return "none"
	case Encrypted:
		return "encrypted"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// LinkSecurity is a snapshot of a connection's current security state, as
// consumed by the access-permission check (C2) and the bearer's
// security-triggered retry ladder (C6). It is the only thing this module
// asks of Security Manager: everything else about pairing/bonding is the
// external SM's business.
type LinkSecurity struct {
	Level             SecurityLevel
	EncryptionKeySize int
}
