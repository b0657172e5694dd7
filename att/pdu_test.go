package att

import (
	"bytes"
	"testing"

	"github.com/leso-kn/ble"
)

func TestErrorResponse_Accessors(t *testing.T) {
	buf := make([]byte, 5)
	e := NewErrorResponse(buf, ble.ReadRequestCode, ble.Handle(0x0010), ble.ErrCodeInvalidHandle)

	if e.AttributeOpcode() != ble.ErrorResponseCode {
		t.Fatalf("opcode = %v, want ErrorResponseCode", e.AttributeOpcode())
	}
	if e.RequestOpcode() != ble.ReadRequestCode {
		t.Fatalf("request opcode = %v, want ReadRequestCode", e.RequestOpcode())
	}
	if e.AttributeHandle() != 0x0010 {
		t.Fatalf("handle = %v, want 0x0010", e.AttributeHandle())
	}
	if e.ErrorCode() != ble.ErrCodeInvalidHandle {
		t.Fatalf("error code = %v, want InvalidHandle", e.ErrorCode())
	}
}

func TestReadRequestResponse_RoundTrip(t *testing.T) {
	reqBuf := make([]byte, 3)
	req := ReadRequest(reqBuf)
	req.SetAttributeOpcode()
	req.SetAttributeHandle(0x002a)

	if req.AttributeOpcode() != ble.ReadRequestCode {
		t.Fatalf("opcode = %v, want ReadRequestCode", req.AttributeOpcode())
	}
	if req.AttributeHandle() != 0x002a {
		t.Fatalf("handle = %v, want 0x002a", req.AttributeHandle())
	}

	value := []byte("attribute value")
	respBuf := make([]byte, 1+len(value))
	resp := ReadResponse(respBuf)
	resp.SetAttributeOpcode()
	resp.SetAttributeValue(value)

	if resp.AttributeOpcode() != ble.ReadResponseCode {
		t.Fatalf("opcode = %v, want ReadResponseCode", resp.AttributeOpcode())
	}
	if !bytes.Equal(resp.AttributeValue(), value) {
		t.Fatalf("value = %q, want %q", resp.AttributeValue(), value)
	}
}

func TestWriteRequest_RoundTrip(t *testing.T) {
	value := []byte("ab")
	buf := make([]byte, 3+len(value))
	w := WriteRequest(buf)
	w.SetAttributeOpcode()
	w.SetAttributeHandle(0x0007)
	w.SetAttributeValue(value)

	if w.AttributeOpcode() != ble.WriteRequestCode {
		t.Fatalf("opcode = %v, want WriteRequestCode", w.AttributeOpcode())
	}
	if w.AttributeHandle() != 0x0007 {
		t.Fatalf("handle = %v, want 0x0007", w.AttributeHandle())
	}
	if !bytes.Equal(w.AttributeValue(), value) {
		t.Fatalf("value = %q, want %q", w.AttributeValue(), value)
	}
}

func TestExchangeMTU_RoundTrip(t *testing.T) {
	reqBuf := make([]byte, 3)
	req := ExchangeMTURequest(reqBuf)
	req.SetAttributeOpcode()
	req.SetClientRxMTU(185)
	if req.ClientRxMTU() != 185 {
		t.Fatalf("client rx mtu = %d, want 185", req.ClientRxMTU())
	}

	respBuf := make([]byte, 3)
	resp := ExchangeMTUResponse(respBuf)
	resp.SetAttributeOpcode()
	resp.SetServerRxMTU(247)
	if resp.ServerRxMTU() != 247 {
		t.Fatalf("server rx mtu = %d, want 247", resp.ServerRxMTU())
	}
}

func TestReadMultipleRequest_Handles(t *testing.T) {
	buf := make([]byte, 1+3*2)
	r := ReadMultipleRequest(buf)
	r.SetAttributeOpcode()
	dst := r.SetOfHandles()
	want := []ble.Handle{1, 2, 0xffff}
	copy(dst, []byte{0x01, 0x00, 0x02, 0x00, 0xff, 0xff})

	got := r.Handles()
	if len(got) != len(want) {
		t.Fatalf("handles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("handles = %v, want %v", got, want)
		}
	}
}

func TestParse_RejectsUndersizedFixedHeader(t *testing.T) {
	if _, err := Parse([]byte{byte(ble.ReadRequestCode), 0x01}); err != ble.ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParse_ClassifiesKnownOpcode(t *testing.T) {
	frame, err := Parse([]byte{byte(ble.WriteResponseCode)})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if frame.Class != ble.ClassResponse {
		t.Fatalf("class = %v, want ClassResponse", frame.Class)
	}
}

func TestNewWriter_SetsOpcodeAndReturnsPayload(t *testing.T) {
	buf := make([]byte, 3)
	payload := NewWriter(ble.ReadRequestCode, buf)

	if buf[0] != byte(ble.ReadRequestCode) {
		t.Fatalf("buf[0] = %x, want ReadRequestCode", buf[0])
	}
	if len(payload) != 2 {
		t.Fatalf("payload len = %d, want 2", len(payload))
	}
	payload[0] = 0x2a
	if buf[1] != 0x2a {
		t.Fatal("payload is not a view into buf[1:]")
	}
}
