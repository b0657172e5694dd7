package att

import "github.com/leso-kn/ble"

// Frame is a classified, still zero-copy view of one received PDU.
type Frame struct {
	OpCode ble.OpCode
	Class  ble.Class
	Raw    []byte
}

// minLength is the smallest legal payload (including the opcode byte) for
// each fixed-header opcode. Variable-tail PDUs are only bounded below;
// their upper bound is the bearer's MTU.
var minLength = map[ble.OpCode]int{
	ble.ErrorResponseCode:           5,
	ble.ExchangeMTURequestCode:      3,
	ble.ExchangeMTUResponseCode:     3,
	ble.FindInformationRequestCode:  5,
	ble.FindInformationResponseCode: 6,
	ble.FindByTypeValueRequestCode:  7,
	ble.FindByTypeValueResponseCode: 5,
	ble.ReadByTypeRequestCode:       7,
	ble.ReadByTypeResponseCode:      4,
	ble.ReadRequestCode:             3,
	ble.ReadResponseCode:            1,
	ble.ReadBlobRequestCode:         5,
	ble.ReadBlobResponseCode:        1,
	ble.ReadMultipleRequestCode:     5,
	ble.ReadMultipleResponseCode:    1,
	ble.ReadByGroupTypeRequestCode:  7,
	ble.ReadByGroupTypeResponseCode: 6,
	ble.WriteRequestCode:            3,
	ble.WriteResponseCode:           1,
	ble.WriteCommandCode:            3,
	ble.SignedWriteCommandCode:      3 + ble.SignatureLength,
	ble.PrepareWriteRequestCode:     5,
	ble.PrepareWriteResponseCode:    5,
	ble.ExecuteWriteRequestCode:     2,
	ble.ExecuteWriteResponseCode:    1,
	ble.HandleValueNotificationCode: 3,
	ble.HandleValueIndicationCode:   3,
	ble.HandleValueConfirmationCode: 1,
}

// Parse classifies a received frame and checks it against the fixed-header
// minimum length for its opcode. It never panics: malformed input yields
// (Frame{}, ErrMalformed).
func Parse(b []byte) (Frame, error) {
	if len(b) == 0 {
		return Frame{}, ble.ErrMalformed
	}
	op := ble.OpCode(b[0])
	class := ble.Classify(op)
	if min, ok := minLength[op]; ok && len(b) < min {
		return Frame{}, ble.ErrMalformed
	}
	return Frame{OpCode: op, Class: class, Raw: b}, nil
}

// NewWriter writes op into buf[0] and returns the mutable payload view
// buf[1:]. buf must already be sized for the PDU being built.
func NewWriter(op ble.OpCode, buf []byte) []byte {
	buf[0] = byte(op)
	return buf[1:]
}
