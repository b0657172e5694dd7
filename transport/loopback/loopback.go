// Package loopback implements ble.Conn over an in-process net.Pipe, paired
// with a security.Manager on each end — demo/test scaffolding standing in
// for a real L2CAP link, the way the teacher's linux/device.go stands in
// front of an actual HCI transport.
package loopback

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/leso-kn/ble"
	"github.com/leso-kn/ble/security"
)

// addr is the minimal ble.Addr a loopback conn needs: a label, nothing more.
type addr string

func (a addr) Network() string { return "loopback" }
func (a addr) String() string  { return string(a) }
func (a addr) Bytes() []byte   { return []byte(a) }

// Conn is a ble.Conn backed by one end of a net.Pipe.
type Conn struct {
	net.Conn

	local  addr
	remote addr

	mgr *security.Manager

	mu       sync.Mutex
	ctx      context.Context
	rxMTU    int
	txMTU    int
	done     chan struct{}
	doneOnce sync.Once
}

// NewPair returns two connected Conns, each the other's RemoteAddr, with
// their security.Managers linked so a StartEncryption/Pair on one side has
// a real handshake partner on the other.
func NewPair(localLabel, remoteLabel string, log ble.Logger) (*Conn, *Conn) {
	a, b := net.Pipe()

	mgrA := security.NewManager(log)
	mgrB := security.NewManager(log)
	security.Link(mgrA, mgrB)

	connA := newConn(a, addr(localLabel), addr(remoteLabel), mgrA)
	connB := newConn(b, addr(remoteLabel), addr(localLabel), mgrB)
	return connA, connB
}

func newConn(nc net.Conn, local, remote addr, mgr *security.Manager) *Conn {
	return &Conn{
		Conn:   nc,
		local:  local,
		remote: remote,
		mgr:    mgr,
		ctx:    context.Background(),
		rxMTU:  ble.DefaultMTU,
		txMTU:  ble.DefaultMTU,
		done:   make(chan struct{}),
	}
}

func (c *Conn) Close() error {
	c.doneOnce.Do(func() { close(c.done) })
	return c.Conn.Close()
}

func (c *Conn) Context() context.Context { return c.ctx }

func (c *Conn) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *Conn) LocalAddr() ble.Addr { return c.local }

func (c *Conn) RemoteAddr() ble.Addr { return c.remote }

// ReadRSSI has no meaning over an in-process pipe; a constant stands in.
func (c *Conn) ReadRSSI() (int8, error) { return 0, nil }

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

func (c *Conn) Pair(auth ble.AuthData, timeout time.Duration) error {
	return c.mgr.Pair(auth, timeout)
}

func (c *Conn) StartEncryption(ch chan ble.EncryptionChangedInfo) error {
	return c.mgr.StartEncryption(ch)
}

func (c *Conn) PrepareCustomPairing(ch chan bool) { c.mgr.PrepareCustomPairing(ch) }

func (c *Conn) LinkSecurity() ble.LinkSecurity { return c.mgr.LinkSecurity() }
