package att

import (
	"crypto/aes"
	"encoding/binary"

	"github.com/aead/cmac"
	"github.com/leso-kn/ble"
)

// The 12-octet Authentication Signature field of a Signed Write Command is
// a 4-octet sign counter followed by an 8-octet MAC [Vol 3, Part F, 3.4.8].
const (
	signCounterLen = 4
	macLen         = ble.SignatureLength - signCounterLen
)

// Sign fills in a Signed Write Command's trailing Authentication Signature
// field: signCounter, then an AES-CMAC (under csrk) of the PDU preceding
// the signature field with signCounter appended, truncated to 8 octets.
// cmd's opcode, handle and value must already be written.
func Sign(cmd SignedWriteCommand, csrk [16]byte, signCounter uint32) error {
	block, err := aes.NewCipher(csrk[:])
	if err != nil {
		return err
	}
	mac, err := cmac.Sum(signable(cmd, signCounter), block, macLen)
	if err != nil {
		return err
	}
	sig := cmd.AuthenticationSignature()
	binary.LittleEndian.PutUint32(sig[:signCounterLen], signCounter)
	copy(sig[signCounterLen:], mac)
	return nil
}

// VerifySignature reports whether cmd's signature field is a valid
// AES-CMAC, under csrk, of the PDU preceding it plus the sign counter
// carried in that same field.
func VerifySignature(cmd SignedWriteCommand, csrk [16]byte) bool {
	block, err := aes.NewCipher(csrk[:])
	if err != nil {
		return false
	}
	sig := cmd.AuthenticationSignature()
	signCounter := binary.LittleEndian.Uint32(sig[:signCounterLen])
	return cmac.Verify(sig[signCounterLen:], signable(cmd, signCounter), block, macLen)
}

// signable returns the bytes the MAC is computed over: the PDU up to the
// signature field, with the 32-bit sign counter appended.
func signable(cmd SignedWriteCommand, signCounter uint32) []byte {
	body := []byte(cmd)
	plain := body[:len(body)-ble.SignatureLength]
	buf := make([]byte, len(plain)+signCounterLen)
	copy(buf, plain)
	binary.LittleEndian.PutUint32(buf[len(plain):], signCounter)
	return buf
}
