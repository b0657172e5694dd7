// Package security is a narrowed stand-in for the teacher's SM: spec.md
// keeps pairing/bonding out of scope except for the security-level ladder,
// an upgrade callback, and a link-security snapshot (see conn.go's
// LinkSecurity). Manager supplies just enough of a real handshake — ECDH
// key agreement plus an optional out-of-band or user-confirm step — to
// drive a loopback pair from NoSecurity to Encrypted to Authenticated, so
// the bearer's security-retry ladder (att/security.go) has something real
// on the other end of Conn.StartEncryption.
package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	ecdh "github.com/wsddn/go-ecdh"

	"github.com/leso-kn/ble"
)

// PairingState tracks where a Manager is in its handshake, mirroring the
// teacher's PairingState enum in linux/hci/smp/manager.go.
type PairingState int

const (
	Init PairingState = iota
	WaitPublicKey
	Finished
	Error
)

const (
	msgPublicKey byte = iota + 1
	msgConfirm
)

// Manager runs one side of a two-party key-agreement handshake and reports
// the resulting LinkSecurity. Two Managers are joined with Link to form a
// loopback pair; a real transport would instead carry these messages over
// the fixed SMP channel.
type Manager struct {
	log   ble.Logger
	curve ecdh.ECDH

	incoming chan []byte
	peer     *Manager

	mu      sync.Mutex
	state   PairingState
	level   ble.SecurityLevel
	keySize int
	confirm *chan bool
}

// NewManager creates an unpaired Manager at ble.NoSecurity.
func NewManager(log ble.Logger) *Manager {
	if log == nil {
		log = ble.NopLogger{}
	}
	return &Manager{
		log:      log,
		curve:    ecdh.NewCurve25519ECDH(),
		incoming: make(chan []byte, 4),
		state:    Init,
	}
}

// Link wires two Managers together as the two ends of a loopback handshake
// channel. Used by transport/loopback when constructing a connected pair.
func Link(a, b *Manager) {
	a.peer = b
	b.peer = a
}

// LinkSecurity reports the manager's current security snapshot, satisfying
// ble.Conn.LinkSecurity.
func (m *Manager) LinkSecurity() ble.LinkSecurity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ble.LinkSecurity{Level: m.level, EncryptionKeySize: m.keySize}
}

// PrepareCustomPairing registers a channel the handshake uses to request a
// user confirmation (numeric-comparison style): when a Pair call reaches
// the confirm step, a value is sent on c; the caller's response sent back
// on the same channel decides whether the link reaches Authenticated.
func (m *Manager) PrepareCustomPairing(c chan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirm = &c
}

// Pair runs the handshake synchronously against the linked peer, up to
// timeout. AuthData.OOBData, if present, authenticates the link directly
// (out-of-band material proves identity without a user confirm); otherwise
// a registered PrepareCustomPairing channel is consulted; absent both, the
// link reaches Encrypted only ("Just Works").
func (m *Manager) Pair(auth ble.AuthData, timeout time.Duration) error {
	m.mu.Lock()
	if m.state != Init && m.state != Finished {
		m.mu.Unlock()
		return errors.New("security: pairing already in progress")
	}
	m.state = WaitPublicKey
	m.mu.Unlock()

	if timeout <= 0 {
		timeout = time.Minute
	}
	return m.negotiate(auth, timeout)
}

// StartEncryption re-runs the handshake in the background and reports the
// outcome on ch. The fresh key agreement leaves the link Encrypted; it
// reaches Authenticated only if a PrepareCustomPairing channel is registered
// and the confirmation is accepted. The level reached does not depend on the
// level the link started at. Satisfies ble.Conn.StartEncryption.
func (m *Manager) StartEncryption(ch chan ble.EncryptionChangedInfo) error {
	m.mu.Lock()
	if m.state != Init && m.state != Finished {
		m.mu.Unlock()
		return errors.New("security: upgrade already in progress")
	}
	m.state = WaitPublicKey
	m.mu.Unlock()

	go func() {
		err := m.negotiate(ble.AuthData{}, 30*time.Second)
		select {
		case ch <- ble.EncryptionChangedInfo{Enabled: err == nil, Err: err}:
		default:
		}
	}()
	return nil
}

func (m *Manager) negotiate(auth ble.AuthData, timeout time.Duration) error {
	if m.peer == nil {
		return errors.New("security: manager has no linked peer")
	}

	priv, pub, err := m.curve.GenerateKey(rand.Reader)
	if err != nil {
		m.fail()
		return fmt.Errorf("security: key generation failed: %w", err)
	}

	deadline := time.After(timeout)
	m.send(msgPublicKey, m.curve.Marshal(pub))

	var peerPub []byte
	select {
	case frame := <-m.incoming:
		if len(frame) == 0 || frame[0] != msgPublicKey {
			m.fail()
			return errors.New("security: unexpected handshake message")
		}
		peerPub = frame[1:]
	case <-deadline:
		m.fail()
		return errors.New("security: pairing timed out")
	}

	peerKey, ok := m.curve.Unmarshal(peerPub)
	if !ok {
		m.fail()
		return errors.New("security: malformed peer public key")
	}
	shared, err := m.curve.GenerateSharedSecret(priv, peerKey)
	if err != nil {
		m.fail()
		return fmt.Errorf("security: shared secret derivation failed: %w", err)
	}

	m.mu.Lock()
	m.level = ble.Encrypted
	m.keySize = len(shared)
	m.mu.Unlock()

	authenticated, err := m.authenticate(auth, deadline)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if authenticated {
		m.level = ble.Authenticated
	}
	m.state = Finished
	m.mu.Unlock()
	return nil
}

// authenticate runs the confirm step, if any is configured, after the
// encrypted link is already established.
func (m *Manager) authenticate(auth ble.AuthData, deadline <-chan time.Time) (bool, error) {
	if len(auth.OOBData) > 0 {
		m.send(msgConfirm, []byte{1})
		return true, nil
	}

	m.mu.Lock()
	confirm := m.confirm
	m.mu.Unlock()
	if confirm == nil {
		return false, nil
	}

	select {
	case *confirm <- true:
	case <-deadline:
		m.fail()
		return false, errors.New("security: pairing timed out waiting for confirmation")
	}

	select {
	case ok := <-*confirm:
		if !ok {
			m.fail()
			return false, errors.New("security: pairing rejected by user")
		}
		return true, nil
	case <-deadline:
		m.fail()
		return false, errors.New("security: pairing timed out waiting for confirmation")
	}
}

func (m *Manager) send(tag byte, payload []byte) {
	frame := append([]byte{tag}, payload...)
	select {
	case m.peer.incoming <- frame:
	default:
		m.log.Errorf("security: peer handshake channel full, dropping message")
	}
}

func (m *Manager) fail() {
	m.mu.Lock()
	m.state = Error
	m.mu.Unlock()
}
