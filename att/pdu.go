// Package att implements the Attribute Protocol: the PDU codec, the
// transaction queue, and the Bearer that ties them to a channel.
package att

import (
	"encoding/binary"

	"github.com/leso-kn/ble"
)

// Every PDU type below is a thin accessor over a byte slice — no copying,
// no allocation beyond what the caller already did for the buffer. Each
// type is used both to write a PDU into a caller-supplied buffer (Set*
// methods) and to read one out of a received frame (the same accessors,
// read-only in that direction). This mirrors how the teacher's
// linux/att/client.go already uses these exact accessor names
// (ExchangeMTURequest(txBuf[:3]), req.SetAttributeOpcode(), etc.) — this
// file is the codec those call sites were always assuming existed.

// AttributeOpcode returns the first byte of any ATT PDU.
func AttributeOpcode(b []byte) ble.OpCode { return ble.OpCode(b[0]) }

// ErrorResponse is the Error Response PDU: opcode, request opcode, handle,
// error code.
type ErrorResponse []byte

func NewErrorResponse(buf []byte, reqOp ble.OpCode, handle ble.Handle, code ble.ErrorCode) ErrorResponse {
	e := ErrorResponse(buf[:5])
	e[0] = byte(ble.ErrorResponseCode)
	e.SetRequestOpcode(reqOp)
	e.SetAttributeHandle(handle)
	e.SetErrorCode(code)
	return e
}

func (e ErrorResponse) AttributeOpcode() ble.OpCode      { return AttributeOpcode(e) }
func (e ErrorResponse) SetRequestOpcode(op ble.OpCode)   { e[1] = byte(op) }
func (e ErrorResponse) RequestOpcode() ble.OpCode        { return ble.OpCode(e[1]) }
func (e ErrorResponse) SetAttributeHandle(h ble.Handle)  { binary.LittleEndian.PutUint16(e[2:4], uint16(h)) }
func (e ErrorResponse) AttributeHandle() ble.Handle      { return ble.Handle(binary.LittleEndian.Uint16(e[2:4])) }
func (e ErrorResponse) SetErrorCode(c ble.ErrorCode)     { e[4] = byte(c) }
func (e ErrorResponse) ErrorCode() ble.ErrorCode         { return ble.ErrorCode(e[4]) }

// ExchangeMTURequest/Response: u16 mtu.
type ExchangeMTURequest []byte

func (r ExchangeMTURequest) SetAttributeOpcode() { r[0] = byte(ble.ExchangeMTURequestCode) }
func (r ExchangeMTURequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ExchangeMTURequest) SetClientRxMTU(mtu uint16) { binary.LittleEndian.PutUint16(r[1:3], mtu) }
func (r ExchangeMTURequest) ClientRxMTU() uint16       { return binary.LittleEndian.Uint16(r[1:3]) }

type ExchangeMTUResponse []byte

func (r ExchangeMTUResponse) SetAttributeOpcode() { r[0] = byte(ble.ExchangeMTUResponseCode) }
func (r ExchangeMTUResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ExchangeMTUResponse) SetServerRxMTU(mtu uint16) { binary.LittleEndian.PutUint16(r[1:3], mtu) }
func (r ExchangeMTUResponse) ServerRxMTU() uint16       { return binary.LittleEndian.Uint16(r[1:3]) }

// FindInformationRequest: u16 start, u16 end.
type FindInformationRequest []byte

func (r FindInformationRequest) SetAttributeOpcode()      { r[0] = byte(ble.FindInformationRequestCode) }
func (r FindInformationRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r FindInformationRequest) SetStartingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r FindInformationRequest) StartingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r FindInformationRequest) SetEndingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[3:5], uint16(h))
}
func (r FindInformationRequest) EndingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[3:5]))
}

// FindInformationResponse: u8 format, list.
// format 1: [u16 handle, u16 uuid]*; format 2: [u16 handle, u128 uuid]*.
type FindInformationResponse []byte

const (
	FindInfoFormatUUID16  = 0x01
	FindInfoFormatUUID128 = 0x02
)

func (r FindInformationResponse) SetAttributeOpcode() { r[0] = byte(ble.FindInformationResponseCode) }
func (r FindInformationResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r FindInformationResponse) SetFormat(f uint8)    { r[1] = f }
func (r FindInformationResponse) Format() uint8        { return r[1] }
func (r FindInformationResponse) InformationData() []byte { return r[2:] }

// FindByTypeValueRequest: u16 start, u16 end, u16 type, bytes value.
type FindByTypeValueRequest []byte

func (r FindByTypeValueRequest) SetAttributeOpcode() { r[0] = byte(ble.FindByTypeValueRequestCode) }
func (r FindByTypeValueRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r FindByTypeValueRequest) SetStartingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r FindByTypeValueRequest) StartingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r FindByTypeValueRequest) SetEndingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[3:5], uint16(h))
}
func (r FindByTypeValueRequest) EndingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[3:5]))
}
func (r FindByTypeValueRequest) SetAttributeType(u uint16) { binary.LittleEndian.PutUint16(r[5:7], u) }
func (r FindByTypeValueRequest) AttributeType() uint16     { return binary.LittleEndian.Uint16(r[5:7]) }
func (r FindByTypeValueRequest) SetAttributeValue(v []byte) { copy(r[7:], v) }
func (r FindByTypeValueRequest) AttributeValue() []byte     { return r[7:] }

// FindByTypeValueResponse: [u16 handle, u16 group_end_handle]+.
type FindByTypeValueResponse []byte

func (r FindByTypeValueResponse) SetAttributeOpcode() { r[0] = byte(ble.FindByTypeValueResponseCode) }
func (r FindByTypeValueResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r FindByTypeValueResponse) HandlesInformationList() []byte { return r[1:] }

// ReadByTypeRequest: u16 start, u16 end, u16|u128 type.
type ReadByTypeRequest []byte

func (r ReadByTypeRequest) SetAttributeOpcode() { r[0] = byte(ble.ReadByTypeRequestCode) }
func (r ReadByTypeRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadByTypeRequest) SetStartingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r ReadByTypeRequest) StartingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r ReadByTypeRequest) SetEndingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[3:5], uint16(h))
}
func (r ReadByTypeRequest) EndingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[3:5]))
}
func (r ReadByTypeRequest) SetAttributeType(u ble.UUID) { copy(r[5:], u) }
func (r ReadByTypeRequest) AttributeType() ble.UUID     { return ble.UUID(r[5:]) }

// ReadByTypeResponse: u8 entry_length, [u16 handle, bytes value]+.
type ReadByTypeResponse []byte

func (r ReadByTypeResponse) SetAttributeOpcode() { r[0] = byte(ble.ReadByTypeResponseCode) }
func (r ReadByTypeResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadByTypeResponse) SetLength(l uint8)  { r[1] = l }
func (r ReadByTypeResponse) Length() uint8      { return r[1] }
func (r ReadByTypeResponse) AttributeDataList() []byte { return r[2:] }

// ReadRequest: u16 handle.
type ReadRequest []byte

func (r ReadRequest) SetAttributeOpcode() { r[0] = byte(ble.ReadRequestCode) }
func (r ReadRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadRequest) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r ReadRequest) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}

// ReadResponse: bytes value.
type ReadResponse []byte

func (r ReadResponse) SetAttributeOpcode() { r[0] = byte(ble.ReadResponseCode) }
func (r ReadResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadResponse) SetAttributeValue(v []byte) { copy(r[1:], v) }
func (r ReadResponse) AttributeValue() []byte     { return r[1:] }

// ReadBlobRequest: u16 handle, u16 offset.
type ReadBlobRequest []byte

func (r ReadBlobRequest) SetAttributeOpcode() { r[0] = byte(ble.ReadBlobRequestCode) }
func (r ReadBlobRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadBlobRequest) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r ReadBlobRequest) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r ReadBlobRequest) SetValueOffset(o uint16) { binary.LittleEndian.PutUint16(r[3:5], o) }
func (r ReadBlobRequest) ValueOffset() uint16     { return binary.LittleEndian.Uint16(r[3:5]) }

// ReadBlobResponse: bytes partial_value.
type ReadBlobResponse []byte

func (r ReadBlobResponse) SetAttributeOpcode() { r[0] = byte(ble.ReadBlobResponseCode) }
func (r ReadBlobResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadBlobResponse) SetPartAttributeValue(v []byte) { copy(r[1:], v) }
func (r ReadBlobResponse) PartAttributeValue() []byte     { return r[1:] }

// ReadMultipleRequest: [u16 handle]{2..}.
type ReadMultipleRequest []byte

func (r ReadMultipleRequest) SetAttributeOpcode() { r[0] = byte(ble.ReadMultipleRequestCode) }
func (r ReadMultipleRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadMultipleRequest) SetOfHandles() []byte { return r[1:] }
func (r ReadMultipleRequest) Handles() []ble.Handle {
	raw := r[1:]
	hh := make([]ble.Handle, len(raw)/2)
	for i := range hh {
		hh[i] = ble.Handle(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return hh
}

// ReadMultipleResponse: concatenated values.
type ReadMultipleResponse []byte

func (r ReadMultipleResponse) SetAttributeOpcode() { r[0] = byte(ble.ReadMultipleResponseCode) }
func (r ReadMultipleResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadMultipleResponse) SetOfValues() []byte { return r[1:] }

// ReadByGroupTypeRequest: same layout as ReadByTypeRequest.
type ReadByGroupTypeRequest []byte

func (r ReadByGroupTypeRequest) SetAttributeOpcode() { r[0] = byte(ble.ReadByGroupTypeRequestCode) }
func (r ReadByGroupTypeRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadByGroupTypeRequest) SetStartingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r ReadByGroupTypeRequest) StartingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r ReadByGroupTypeRequest) SetEndingHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[3:5], uint16(h))
}
func (r ReadByGroupTypeRequest) EndingHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[3:5]))
}
func (r ReadByGroupTypeRequest) SetAttributeGroupType(u ble.UUID) { copy(r[5:], u) }
func (r ReadByGroupTypeRequest) AttributeGroupType() ble.UUID     { return ble.UUID(r[5:]) }

// ReadByGroupTypeResponse: u8 entry_length, [u16 start, u16 group_end, bytes value]+.
type ReadByGroupTypeResponse []byte

func (r ReadByGroupTypeResponse) SetAttributeOpcode() { r[0] = byte(ble.ReadByGroupTypeResponseCode) }
func (r ReadByGroupTypeResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ReadByGroupTypeResponse) SetLength(l uint8) { r[1] = l }
func (r ReadByGroupTypeResponse) Length() uint8     { return r[1] }
func (r ReadByGroupTypeResponse) AttributeDataList() []byte { return r[2:] }

// WriteRequest: u16 handle, bytes value.
type WriteRequest []byte

func (r WriteRequest) SetAttributeOpcode() { r[0] = byte(ble.WriteRequestCode) }
func (r WriteRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r WriteRequest) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r WriteRequest) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r WriteRequest) SetAttributeValue(v []byte) { copy(r[3:], v) }
func (r WriteRequest) AttributeValue() []byte     { return r[3:] }

// WriteResponse: empty.
type WriteResponse []byte

func (r WriteResponse) SetAttributeOpcode() { r[0] = byte(ble.WriteResponseCode) }
func (r WriteResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }

// WriteCommand: u16 handle, bytes value. No response.
type WriteCommand []byte

func (r WriteCommand) SetAttributeOpcode() { r[0] = byte(ble.WriteCommandCode) }
func (r WriteCommand) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r WriteCommand) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r WriteCommand) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r WriteCommand) SetAttributeValue(v []byte) { copy(r[3:], v) }
func (r WriteCommand) AttributeValue() []byte     { return r[3:] }

// SignedWriteCommand: payload + 12-byte signature suffix.
type SignedWriteCommand []byte

func (r SignedWriteCommand) SetAttributeOpcode() { r[0] = byte(ble.SignedWriteCommandCode) }
func (r SignedWriteCommand) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r SignedWriteCommand) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r SignedWriteCommand) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r SignedWriteCommand) AttributeValue() []byte {
	return r[3 : len(r)-ble.SignatureLength]
}
func (r SignedWriteCommand) SetAttributeValue(v []byte) { copy(r[3:], v) }
func (r SignedWriteCommand) SetAuthenticationSignature(sig [ble.SignatureLength]byte) {
	copy(r[len(r)-ble.SignatureLength:], sig[:])
}
func (r SignedWriteCommand) AuthenticationSignature() []byte {
	return r[len(r)-ble.SignatureLength:]
}

// PrepareWriteRequest/Response: u16 handle, u16 offset, bytes part_value.
type PrepareWriteRequest []byte

func (r PrepareWriteRequest) SetAttributeOpcode() { r[0] = byte(ble.PrepareWriteRequestCode) }
func (r PrepareWriteRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r PrepareWriteRequest) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r PrepareWriteRequest) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r PrepareWriteRequest) SetValueOffset(o uint16) { binary.LittleEndian.PutUint16(r[3:5], o) }
func (r PrepareWriteRequest) ValueOffset() uint16     { return binary.LittleEndian.Uint16(r[3:5]) }
func (r PrepareWriteRequest) SetPartAttributeValue(v []byte) { copy(r[5:], v) }
func (r PrepareWriteRequest) PartAttributeValue() []byte     { return r[5:] }

type PrepareWriteResponse []byte

func (r PrepareWriteResponse) SetAttributeOpcode() { r[0] = byte(ble.PrepareWriteResponseCode) }
func (r PrepareWriteResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r PrepareWriteResponse) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r PrepareWriteResponse) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r PrepareWriteResponse) SetValueOffset(o uint16) { binary.LittleEndian.PutUint16(r[3:5], o) }
func (r PrepareWriteResponse) ValueOffset() uint16     { return binary.LittleEndian.Uint16(r[3:5]) }
func (r PrepareWriteResponse) SetPartAttributeValue(v []byte) { copy(r[5:], v) }
func (r PrepareWriteResponse) PartAttributeValue() []byte     { return r[5:] }

// ExecuteWriteRequest: u8 flag (0=cancel_all, 1=write_pending).
type ExecuteWriteRequest []byte

const (
	ExecuteWriteCancelAll    uint8 = 0x00
	ExecuteWriteWritePending uint8 = 0x01
)

func (r ExecuteWriteRequest) SetAttributeOpcode() { r[0] = byte(ble.ExecuteWriteRequestCode) }
func (r ExecuteWriteRequest) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r ExecuteWriteRequest) SetFlags(f uint8) { r[1] = f }
func (r ExecuteWriteRequest) Flags() uint8     { return r[1] }

// ExecuteWriteResponse: empty.
type ExecuteWriteResponse []byte

func (r ExecuteWriteResponse) SetAttributeOpcode() { r[0] = byte(ble.ExecuteWriteResponseCode) }
func (r ExecuteWriteResponse) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }

// HandleValueNotification/Indication: u16 handle, bytes value.
type HandleValueNotification []byte

func (r HandleValueNotification) SetAttributeOpcode() { r[0] = byte(ble.HandleValueNotificationCode) }
func (r HandleValueNotification) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r HandleValueNotification) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r HandleValueNotification) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r HandleValueNotification) SetAttributeValue(v []byte) { copy(r[3:], v) }
func (r HandleValueNotification) AttributeValue() []byte     { return r[3:] }

type HandleValueIndication []byte

func (r HandleValueIndication) SetAttributeOpcode() { r[0] = byte(ble.HandleValueIndicationCode) }
func (r HandleValueIndication) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
func (r HandleValueIndication) SetAttributeHandle(h ble.Handle) {
	binary.LittleEndian.PutUint16(r[1:3], uint16(h))
}
func (r HandleValueIndication) AttributeHandle() ble.Handle {
	return ble.Handle(binary.LittleEndian.Uint16(r[1:3]))
}
func (r HandleValueIndication) SetAttributeValue(v []byte) { copy(r[3:], v) }
func (r HandleValueIndication) AttributeValue() []byte     { return r[3:] }

// HandleValueConfirmation: empty.
type HandleValueConfirmation []byte

func (r HandleValueConfirmation) SetAttributeOpcode() { r[0] = byte(ble.HandleValueConfirmationCode) }
func (r HandleValueConfirmation) AttributeOpcode() ble.OpCode { return AttributeOpcode(r) }
