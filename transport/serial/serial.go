// Package serial adapts a UART-attached controller into a ble.Conn, the
// way the teacher's linux/hci/transport.go picks a transportH4Uart backed
// by github.com/jacobsa/go-serial. The teacher's H4 framing subpackage
// (linux/hci/h4) wasn't part of the retrieval pack, so framing here is done
// inline: each ATT PDU is sent as a 2-byte little-endian length prefix
// followed by the PDU bytes, since a raw serial byte stream (unlike L2CAP)
// gives the reader no frame boundaries of its own.
package serial

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"

	"github.com/leso-kn/ble"
)

// Options configures the serial port a Conn opens.
type Options struct {
	PortName string
	BaudRate uint
}

// addr identifies a serial-attached peer by port path; real address
// exchange happens above this transport (GAP is out of this module's
// scope), so the port name is the only identity a serial Conn has.
type addr string

func (a addr) Network() string { return "serial" }
func (a addr) String() string  { return string(a) }
func (a addr) Bytes() []byte   { return []byte(a) }

// Conn is a ble.Conn over a length-prefix-framed serial port. Security
// upgrades are not available over this transport: the peer is a real
// controller, not another instance of this module's security.Manager, so
// Pair/StartEncryption return a plain "not available over this transport"
// error rather than attempting a handshake nothing is listening for.
type Conn struct {
	port io.ReadWriteCloser

	local addr

	mu    sync.Mutex
	ctx   context.Context
	rxMTU int
	txMTU int

	done     chan struct{}
	doneOnce sync.Once
}

// Dial opens the serial port described by opts and wraps it as a ble.Conn.
func Dial(opts Options) (*Conn, error) {
	so := goserial.OpenOptions{
		PortName:        opts.PortName,
		BaudRate:        opts.BaudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	}
	port, err := goserial.Open(so)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", opts.PortName, err)
	}
	return &Conn{
		port:  port,
		local: addr(opts.PortName),
		ctx:   context.Background(),
		rxMTU: ble.DefaultMTU,
		txMTU: ble.DefaultMTU,
		done:  make(chan struct{}),
	}, nil
}

// Read reads one length-prefixed frame and returns its payload in p. p
// must be large enough for the frame; a too-small p yields io.ErrShortBuffer.
func (c *Conn) Read(p []byte) (int, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(c.port, lenBuf[:]); err != nil {
		return 0, err
	}
	n := int(binary.LittleEndian.Uint16(lenBuf[:]))
	if n > len(p) {
		return 0, io.ErrShortBuffer
	}
	if _, err := io.ReadFull(c.port, p[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Write sends p as one length-prefixed frame.
func (c *Conn) Write(p []byte) (int, error) {
	if len(p) > 0xFFFF {
		return 0, fmt.Errorf("serial: frame too large (%d bytes)", len(p))
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(p)))
	if _, err := c.port.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	return c.port.Write(p)
}

func (c *Conn) Close() error {
	c.doneOnce.Do(func() { close(c.done) })
	return c.port.Close()
}

func (c *Conn) Context() context.Context { return c.ctx }

func (c *Conn) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *Conn) LocalAddr() ble.Addr { return c.local }

func (c *Conn) RemoteAddr() ble.Addr { return addr("") }

func (c *Conn) ReadRSSI() (int8, error) { return 0, fmt.Errorf("serial: RSSI unavailable") }

func (c *Conn) RxMTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rxMTU
}

func (c *Conn) SetRxMTU(mtu int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rxMTU = mtu
}

func (c *Conn) TxMTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txMTU
}

func (c *Conn) SetTxMTU(mtu int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txMTU = mtu
}

func (c *Conn) Disconnected() <-chan struct{} { return c.done }

func (c *Conn) Pair(ble.AuthData, time.Duration) error {
	return fmt.Errorf("serial: pairing is not available over this transport")
}

func (c *Conn) StartEncryption(chan ble.EncryptionChangedInfo) error {
	return fmt.Errorf("serial: security upgrade is not available over this transport")
}

func (c *Conn) PrepareCustomPairing(chan bool) {}

func (c *Conn) LinkSecurity() ble.LinkSecurity { return ble.LinkSecurity{} }
