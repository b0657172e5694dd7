// Package gatt implements the Attribute & Grouping model and the handle
// database that sits above the att package: access-permission checks (C2),
// attributes and groupings (C3), and the database itself (C4).
package gatt

import "github.com/leso-kn/ble"

// AccessRequirements gates one direction (read or write) of one attribute.
// The zero value denies access.
type AccessRequirements struct {
	Allowed               bool
	EncryptionRequired    bool
	AuthenticationRequired bool
	AuthorizationRequired bool
	MinEncryptionKeySize  int
}

// Operation distinguishes a read access check from a write one, since the
// two map to different ATT error codes on an allowed=false requirement.
type Operation int

const (
	OpRead Operation = iota
	OpWrite
)

// CheckAccess evaluates reqs against the link's current security state and
// returns the ATT error code to report, or ble.NoError if access is
// granted. Implements spec.md §4.2 verbatim, including its explicit choice
// not to distinguish "insufficient encryption" from "insufficient
// authentication" at the link-security-too-low step.
func CheckAccess(reqs AccessRequirements, link ble.LinkSecurity, op Operation) ble.ErrorCode {
	if !reqs.Allowed {
		if op == OpWrite {
			return ble.ErrCodeWriteNotPermitted
		}
		return ble.ErrCodeReadNotPermitted
	}
	if reqs.EncryptionRequired && link.Level < ble.Encrypted {
		return ble.ErrCodeInsufficientAuth
	}
	if (reqs.AuthenticationRequired || reqs.AuthorizationRequired) && link.Level < ble.Authenticated {
		return ble.ErrCodeInsufficientAuth
	}
	if reqs.EncryptionRequired && link.EncryptionKeySize < reqs.MinEncryptionKeySize {
		return ble.ErrCodeInsufficientEncKeySize
	}
	return ble.NoError
}
