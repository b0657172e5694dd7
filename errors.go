package ble

import (
	"errors"
	"fmt"
)

// ErrorCode is a one-byte ATT error code, transmitted in an Error Response.
// NoError is a local sentinel only: it must never be placed on the wire.
type ErrorCode uint8

// ATT error codes, §6.2.
const (
	NoError                       ErrorCode = 0x00
	ErrCodeInvalidHandle          ErrorCode = 0x01
	ErrCodeReadNotPermitted       ErrorCode = 0x02
	ErrCodeWriteNotPermitted      ErrorCode = 0x03
	ErrCodeInvalidPDU             ErrorCode = 0x04
	ErrCodeInsufficientAuth       ErrorCode = 0x05
	ErrCodeRequestNotSupported    ErrorCode = 0x06
	ErrCodeInvalidOffset          ErrorCode = 0x07
	ErrCodeInsufficientAuthor     ErrorCode = 0x08
	ErrCodePrepareQueueFull       ErrorCode = 0x09
	ErrCodeAttributeNotFound      ErrorCode = 0x0A
	ErrCodeAttributeNotLong       ErrorCode = 0x0B
	ErrCodeInsufficientEncKeySize ErrorCode = 0x0C
	ErrCodeInvalidAttrValueLen    ErrorCode = 0x0D
	ErrCodeUnlikely               ErrorCode = 0x0E
	ErrCodeInsufficientEnc        ErrorCode = 0x0F
	ErrCodeUnsupportedGroupType   ErrorCode = 0x10
	ErrCodeInsufficientResources  ErrorCode = 0x11
)

var errorCodeNames = map[ErrorCode]string{
	NoError:                       "no error",
	ErrCodeInvalidHandle:          "invalid handle",
	ErrCodeReadNotPermitted:       "read not permitted",
	ErrCodeWriteNotPermitted:      "write not permitted",
	ErrCodeInvalidPDU:             "invalid PDU",
	ErrCodeInsufficientAuth:       "insufficient authentication",
	ErrCodeRequestNotSupported:    "request not supported",
	ErrCodeInvalidOffset:         "invalid offset",
	ErrCodeInsufficientAuthor:     "insufficient authorization",
	ErrCodePrepareQueueFull:       "prepare queue full",
	ErrCodeAttributeNotFound:      "attribute not found",
	ErrCodeAttributeNotLong:       "attribute not long",
	ErrCodeInsufficientEncKeySize: "insufficient encryption key size",
	ErrCodeInvalidAttrValueLen:    "invalid attribute value length",
	ErrCodeUnlikely:               "unlikely error",
	ErrCodeInsufficientEnc:        "insufficient encryption",
	ErrCodeUnsupportedGroupType:   "unsupported group type",
	ErrCodeInsufficientResources:  "insufficient resources",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeNames[e]; ok {
		return s
	}
	return fmt.Sprintf("error code 0x%02x", uint8(e))
}

// ATTError adapts a transmitted ErrorCode to the error interface, the way
// the teacher's att.Client already returns ble.ATTError(rsp[4]) from a
// parsed Error Response.
type ATTError ErrorCode

func (e ATTError) Error() string { return ErrorCode(e).String() }

// Code returns the underlying ErrorCode.
func (e ATTError) Code() ErrorCode { return ErrorCode(e) }

// Host errors: never transmitted on the wire, surfaced only to the local
// caller.
var (
	ErrTimedOut   = errors.New("ble: transaction timed out")
	ErrFailed     = errors.New("ble: bearer failed")
	ErrOutOfMemory = errors.New("ble: out of memory")
	ErrCanceled   = errors.New("ble: transaction canceled")

	ErrInvalidArgument = errors.New("ble: invalid argument")
	ErrInvalidResponse = errors.New("ble: invalid response")
	ErrSeqProtoTimeout = errors.New("ble: sequential protocol timeout")
	ErrMalformed       = errors.New("ble: malformed PDU")
	ErrReqNotSupp      = ATTError(ErrCodeRequestNotSupported)
)

// TransactionError is the failure half of a completed transaction:
// either a protocol error with the attribute handle it refers to, or a
// host-level error (handle is InvalidHandle in that case).
type TransactionError struct {
	Err    error
	Handle Handle
}

func (e *TransactionError) Error() string {
	if e.Handle.Valid() {
		return fmt.Sprintf("%s (handle 0x%04x)", e.Err, uint16(e.Handle))
	}
	return e.Err.Error()
}

func (e *TransactionError) Unwrap() error { return e.Err }

// NewProtocolError builds a TransactionError carrying an ATT error code
// and the attribute handle it was reported against.
func NewProtocolError(code ErrorCode, handle Handle) *TransactionError {
	return &TransactionError{Err: ATTError(code), Handle: handle}
}

// NewHostError builds a TransactionError for a host-level failure
// (timeout, shutdown, cancellation) that carries no attribute handle.
func NewHostError(err error) *TransactionError {
	return &TransactionError{Err: err, Handle: InvalidHandle}
}
