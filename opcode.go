package ble

// OpCode is an 8-bit ATT opcode. Bit 6 is the command flag, bit 7 the
// authentication-signature flag; bits 0-5 select the method.
type OpCode uint8

// ATT opcodes, §6.1.
const (
	ErrorResponseCode           OpCode = 0x01
	ExchangeMTURequestCode      OpCode = 0x02
	ExchangeMTUResponseCode     OpCode = 0x03
	FindInformationRequestCode  OpCode = 0x04
	FindInformationResponseCode OpCode = 0x05
	FindByTypeValueRequestCode  OpCode = 0x06
	FindByTypeValueResponseCode OpCode = 0x07
	ReadByTypeRequestCode       OpCode = 0x08
	ReadByTypeResponseCode      OpCode = 0x09
	ReadRequestCode             OpCode = 0x0A
	ReadResponseCode            OpCode = 0x0B
	ReadBlobRequestCode         OpCode = 0x0C
	ReadBlobResponseCode        OpCode = 0x0D
	ReadMultipleRequestCode     OpCode = 0x0E
	ReadMultipleResponseCode    OpCode = 0x0F
	ReadByGroupTypeRequestCode  OpCode = 0x10
	ReadByGroupTypeResponseCode OpCode = 0x11
	WriteRequestCode            OpCode = 0x12
	WriteResponseCode           OpCode = 0x13
	WriteCommandCode            OpCode = 0x52
	SignedWriteCommandCode      OpCode = 0xD2
	PrepareWriteRequestCode     OpCode = 0x16
	PrepareWriteResponseCode    OpCode = 0x17
	ExecuteWriteRequestCode     OpCode = 0x18
	ExecuteWriteResponseCode    OpCode = 0x19
	HandleValueNotificationCode OpCode = 0x1B
	HandleValueIndicationCode   OpCode = 0x1D
	HandleValueConfirmationCode OpCode = 0x1E
)

const (
	opCommandFlag   OpCode = 0x40
	opSignatureFlag OpCode = 0x80
	opMethodMask    OpCode = 0x3F
)

// IsCommand reports whether the command flag (bit 6) is set.
func (op OpCode) IsCommand() bool { return op&opCommandFlag != 0 }

// IsSigned reports whether the authentication-signature flag (bit 7) is set.
func (op OpCode) IsSigned() bool { return op&opSignatureFlag != 0 }

// Method returns the opcode with the command and signature flags stripped.
func (op OpCode) Method() OpCode { return op & opMethodMask }

// Class classifies a PDU's opcode for dispatch purposes.
type Class int

const (
	ClassInvalid Class = iota
	ClassRequest
	ClassResponse
	ClassCommand
	ClassNotification
	ClassIndication
	ClassConfirmation
)

func (c Class) String() string {
	switch c {
	case ClassRequest:
		return "request"
	case ClassResponse:
		return "response"
	case ClassCommand:
		return "command"
	case ClassNotification:
		return "notification"
	case ClassIndication:
		return "indication"
	case ClassConfirmation:
		return "confirmation"
	default:
		return "invalid"
	}
}

// fixedClass classifies every opcode not covered by the command-flag rule.
var fixedClass = map[OpCode]Class{
	ErrorResponseCode:           ClassResponse,
	ExchangeMTURequestCode:      ClassRequest,
	ExchangeMTUResponseCode:     ClassResponse,
	FindInformationRequestCode:  ClassRequest,
	FindInformationResponseCode: ClassResponse,
	FindByTypeValueRequestCode:  ClassRequest,
	FindByTypeValueResponseCode: ClassResponse,
	ReadByTypeRequestCode:       ClassRequest,
	ReadByTypeResponseCode:      ClassResponse,
	ReadRequestCode:             ClassRequest,
	ReadResponseCode:            ClassResponse,
	ReadBlobRequestCode:         ClassRequest,
	ReadBlobResponseCode:        ClassResponse,
	ReadMultipleRequestCode:     ClassRequest,
	ReadMultipleResponseCode:    ClassResponse,
	ReadByGroupTypeRequestCode:  ClassRequest,
	ReadByGroupTypeResponseCode: ClassResponse,
	WriteRequestCode:            ClassRequest,
	WriteResponseCode:           ClassResponse,
	SignedWriteCommandCode:      ClassCommand,
	PrepareWriteRequestCode:     ClassRequest,
	PrepareWriteResponseCode:    ClassResponse,
	ExecuteWriteRequestCode:     ClassRequest,
	ExecuteWriteResponseCode:    ClassResponse,
	HandleValueNotificationCode: ClassNotification,
	HandleValueIndicationCode:   ClassIndication,
	HandleValueConfirmationCode: ClassConfirmation,
}

// Classify derives the PDU class of op: a set command flag always wins
// (signed write rides the command flag already, but any other opcode with
// bit 6 set is a command too), otherwise the fixed opcode table applies.
func Classify(op OpCode) Class {
	if op.IsCommand() {
		return ClassCommand
	}
	if c, ok := fixedClass[op]; ok {
		return c
	}
	return ClassInvalid
}

// matchingTransactionCode maps each end-of-transaction opcode back to the
// opcode that originated the transaction.
var matchingTransactionCode = map[OpCode]OpCode{
	ExchangeMTUResponseCode:     ExchangeMTURequestCode,
	FindInformationResponseCode: FindInformationRequestCode,
	FindByTypeValueResponseCode: FindByTypeValueRequestCode,
	ReadByTypeResponseCode:      ReadByTypeRequestCode,
	ReadResponseCode:            ReadRequestCode,
	ReadBlobResponseCode:        ReadBlobRequestCode,
	ReadMultipleResponseCode:    ReadMultipleRequestCode,
	ReadByGroupTypeResponseCode: ReadByGroupTypeRequestCode,
	WriteResponseCode:           WriteRequestCode,
	PrepareWriteResponseCode:    PrepareWriteRequestCode,
	ExecuteWriteResponseCode:    ExecuteWriteRequestCode,
	HandleValueConfirmationCode: HandleValueIndicationCode,
}

// MatchingTransactionCode returns the request/indication opcode that op
// completes, and false if op does not end a transaction.
func MatchingTransactionCode(op OpCode) (OpCode, bool) {
	orig, ok := matchingTransactionCode[op]
	return orig, ok
}
