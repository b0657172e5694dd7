package att

import "github.com/leso-kn/ble"

// securityTarget implements the upgrade ladder of spec.md §4.6: Insufficient
// Encryption, Insufficient Authentication, and Insufficient Authorization
// all drive the same one-rung climb — the target depends on where the link
// already sits, not on which of the three codes came back. Insufficient
// Encryption Key Size, and anything else, never trigger an upgrade attempt.
func securityTarget(code ble.ErrorCode, current ble.SecurityLevel) (ble.SecurityLevel, bool) {
	switch code {
	case ble.ErrCodeInsufficientEnc, ble.ErrCodeInsufficientAuth, ble.ErrCodeInsufficientAuthor:
		switch current {
		case ble.Authenticated:
			return ble.NoSecurity, false // already at the top rung, nowhere to go
		case ble.Encrypted:
			return ble.Authenticated, true
		default:
			return ble.Encrypted, true
		}
	default:
		return ble.NoSecurity, false
	}
}
