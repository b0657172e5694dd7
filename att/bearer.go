package att

import (
	"errors"
	"io"

	"github.com/leso-kn/ble"
)

// BearerOption configures a Bearer at construction time.
type BearerOption func(*Bearer)

// WithMinMTU overrides the link-type minimum MTU (ble.MinMTULE by default;
// pass ble.MinMTUBREDR for a BR/EDR-carried bearer).
func WithMinMTU(min int) BearerOption {
	return func(b *Bearer) { b.linkMinMTU = min; b.mtu = min }
}

// WithPreferredMTU records the bearer's preferred MTU. The bearer only
// stores it: it sends no Exchange MTU request and does not change its MTU
// from it; SetMTU is what changes the MTU.
func WithPreferredMTU(preferred int) BearerOption {
	return func(b *Bearer) { b.preferredMTU = preferred }
}

type remoteTransaction struct {
	id     TransactionID
	opCode ble.OpCode
}

// Bearer is a bidirectional, transaction-oriented ATT PDU carrier: it plays
// both the client role (StartTransaction/SendWithoutResponse) and the
// server role (RegisterHandler/Reply/ReplyWithError) over one ble.Conn, per
// spec.md §4.6. All state is owned by a single dispatch goroutine; every
// public method posts a closure onto that goroutine rather than touching
// state directly, realizing the "no locks, single-thread discipline" model
// of spec.md §5 with channels instead of a mutex.
type Bearer struct {
	conn ble.Conn
	log  ble.Logger

	mtu          int
	linkMinMTU   int
	preferredMTU int

	reqQueue *queue
	indQueue *queue

	remoteRequest    *remoteTransaction
	remoteIndication *remoteTransaction
	nextRemoteTxID   TransactionID

	handlers *handlerRegistry

	closedCallback func(error)

	actions chan func()
	done    chan struct{}
	closed  bool
}

// NewBearer activates conn (starts its read loop) and returns a Bearer
// ready to send and receive. It returns an error if conn is nil.
func NewBearer(conn ble.Conn, log ble.Logger, opts ...BearerOption) (*Bearer, error) {
	if conn == nil {
		return nil, errors.New("att: nil conn")
	}
	if log == nil {
		log = ble.NopLogger{}
	}
	b := &Bearer{
		conn:       conn,
		log:        log,
		mtu:        ble.MinMTULE,
		linkMinMTU: ble.MinMTULE,
		actions:    make(chan func(), 16),
		done:       make(chan struct{}),
	}
	b.reqQueue = newQueue("request", log)
	b.indQueue = newQueue("indication", log)
	b.handlers = newHandlerRegistry()

	for _, opt := range opts {
		opt(b)
	}

	go b.readLoop()
	go b.dispatchLoop()

	return b, nil
}

// MTU returns the bearer's current negotiated MTU.
func (b *Bearer) MTU() int {
	result := make(chan int, 1)
	if !b.post(func() { result <- b.mtu }) {
		return b.mtu
	}
	return <-result
}

// SetMTU updates the bearer's negotiated MTU, e.g. once an Exchange MTU
// transaction (conducted above this package, via StartTransaction /
// RegisterHandler) has settled on a value. It clamps to [linkMinimum,
// ble.MaxMTU] and reports the value actually applied.
func (b *Bearer) SetMTU(mtu int) int {
	var applied int
	b.postSync(func() {
		if mtu < b.linkMinMTU {
			mtu = b.linkMinMTU
		}
		if mtu > ble.MaxMTU {
			mtu = ble.MaxMTU
		}
		b.mtu = mtu
		applied = mtu
	})
	return applied
}

// SetClosedCallback registers cb to be invoked at most once, when the
// bearer shuts down.
func (b *Bearer) SetClosedCallback(cb func(error)) {
	b.post(func() { b.closedCallback = cb })
}

// post delivers fn to the dispatch goroutine. It returns false without
// running fn if the bearer is already shut down.
func (b *Bearer) post(fn func()) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.actions <- fn:
		return true
	case <-b.done:
		return false
	}
}

// postSync runs fn on the dispatch goroutine and waits for it to finish.
func (b *Bearer) postSync(fn func()) bool {
	done := make(chan struct{})
	ok := b.post(func() {
		fn()
		close(done)
	})
	if !ok {
		return false
	}
	<-done
	return true
}

// StartTransaction enqueues pdu as a new outbound request or indication.
// completion is invoked exactly once, unless StartTransaction itself
// returns false, in which case it is never invoked.
func (b *Bearer) StartTransaction(pdu []byte, completion Completion) bool {
	if len(pdu) == 0 {
		return false
	}
	op := ble.OpCode(pdu[0])
	class := ble.Classify(op)
	if class != ble.ClassRequest && class != ble.ClassIndication {
		return false
	}

	var ok bool
	b.postSync(func() {
		if b.closed || len(pdu) > b.mtu {
			ok = false
			return
		}
		cp := make([]byte, len(pdu))
		copy(cp, pdu)
		tx := &pendingTransaction{opCode: op, pdu: cp, completion: completion}
		q := b.queueFor(class)
		q.Enqueue(tx)
		b.trySend(q)
		ok = true
	})
	return ok
}

// SendWithoutResponse writes a command or notification PDU with no
// transaction bookkeeping. It rejects request/response/indication/
// confirmation opcodes.
func (b *Bearer) SendWithoutResponse(pdu []byte) bool {
	if len(pdu) == 0 {
		return false
	}
	op := ble.OpCode(pdu[0])
	class := ble.Classify(op)
	if class != ble.ClassCommand && class != ble.ClassNotification {
		return false
	}

	var ok bool
	b.postSync(func() {
		if b.closed || len(pdu) > b.mtu {
			ok = false
			return
		}
		ok = b.write(pdu) == nil
	})
	return ok
}

// RegisterHandler installs h for op. At most one handler per opcode;
// duplicate registration fails and returns InvalidHandlerID.
func (b *Bearer) RegisterHandler(op ble.OpCode, h Handler) HandlerID {
	var id HandlerID
	b.postSync(func() {
		id = b.handlers.Register(op, h)
	})
	return id
}

// UnregisterHandler removes a previously-registered handler.
func (b *Bearer) UnregisterHandler(id HandlerID) {
	b.postSync(func() {
		b.handlers.Unregister(id)
	})
}

// Reply completes the inbound request or indication identified by tid with
// pdu. Per spec.md's inherited open question, a reply to an indication
// (a bare Confirmation) is accepted as success without further payload
// validation — this module does not tighten that permissiveness.
func (b *Bearer) Reply(tid TransactionID, pdu []byte) bool {
	frame, err := Parse(pdu)
	var ok bool
	b.postSync(func() {
		if b.closed || err != nil {
			ok = false
			return
		}
		if frame.OpCode == ble.ErrorResponseCode {
			ok = false
			return
		}
		slot, which := b.slotForTID(tid)
		if slot == nil {
			ok = false
			return
		}
		orig, hasMatch := ble.MatchingTransactionCode(frame.OpCode)
		if !hasMatch || orig != slot.opCode {
			ok = false
			return
		}
		if len(pdu) > b.mtu {
			ok = false
			return
		}
		ok = b.write(pdu) == nil
		if ok {
			b.clearSlot(which)
		}
	})
	return ok
}

// ReplyWithError completes the inbound request identified by tid with an
// Error Response. It fails for an indication's tid — indications are
// completed with a Confirmation via Reply, never an error.
func (b *Bearer) ReplyWithError(tid TransactionID, handle ble.Handle, code ble.ErrorCode) bool {
	var ok bool
	b.postSync(func() {
		if b.closed {
			ok = false
			return
		}
		slot, which := b.slotForTID(tid)
		if slot == nil || which == slotIndication {
			ok = false
			return
		}
		buf := make([]byte, 5)
		errResp := NewErrorResponse(buf, slot.opCode, handle, code)
		ok = b.write(errResp) == nil
		if ok {
			b.clearSlot(which)
		}
	})
	return ok
}

// ShutDown tears the bearer down: stops receiving, signals a link error to
// the channel, invokes the closed callback, then resolves every pending
// outbound transaction (request queue, then indication queue) with Failed.
func (b *Bearer) ShutDown() {
	b.shutdown(ble.ErrFailed)
}

type slotKind int

const (
	slotNone slotKind = iota
	slotRequest
	slotIndication
)

func (b *Bearer) slotForTID(tid TransactionID) (*remoteTransaction, slotKind) {
	if b.remoteRequest != nil && b.remoteRequest.id == tid {
		return b.remoteRequest, slotRequest
	}
	if b.remoteIndication != nil && b.remoteIndication.id == tid {
		return b.remoteIndication, slotIndication
	}
	return nil, slotNone
}

func (b *Bearer) clearSlot(which slotKind) {
	switch which {
	case slotRequest:
		b.remoteRequest = nil
	case slotIndication:
		b.remoteIndication = nil
	}
}

func (b *Bearer) queueFor(class ble.Class) *queue {
	if class == ble.ClassIndication {
		return b.indQueue
	}
	return b.reqQueue
}

func (b *Bearer) write(pdu []byte) error {
	if len(pdu) == 0 || len(pdu) > b.mtu {
		return errors.New("att: pdu length out of range")
	}
	_, err := b.conn.Write(pdu)
	return err
}

// nextRemoteTransactionID returns a monotonically increasing id, skipping
// the reserved zero value on wraparound.
func (b *Bearer) nextRemoteTransactionID() TransactionID {
	b.nextRemoteTxID++
	if b.nextRemoteTxID == 0 {
		b.nextRemoteTxID++
	}
	return b.nextRemoteTxID
}

// readLoop reads raw frames off the channel and posts them to the dispatch
// goroutine for processing, mirroring the teacher's Client.Loop read loop.
func (b *Bearer) readLoop() {
	buf := make([]byte, ble.MaxMTU)
	for {
		n, err := b.conn.Read(buf)
		select {
		case <-b.done:
			return
		default:
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				b.log.Errorf("att: read failed: %v", err)
			}
			b.shutdown(ble.ErrFailed)
			return
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		if !b.post(func() { b.handleInbound(frame) }) {
			return
		}
	}
}

// dispatchLoop is the bearer's single home goroutine: every closure posted
// via post/postSync runs here, serialized.
func (b *Bearer) dispatchLoop() {
	for {
		select {
		case fn := <-b.actions:
			fn()
		case <-b.done:
			return
		}
	}
}

func (b *Bearer) trySend(q *queue) {
	q.TrySendNext(b.write, func(tx *pendingTransaction) {
		b.post(func() { b.handleTimeout(q, tx) })
	})
}

func (b *Bearer) handleTimeout(q *queue, tx *pendingTransaction) {
	if q.current != tx {
		return // already resolved by a response that raced the timer
	}
	b.log.Errorf("att: %s transaction timed out", q.category)
	b.shutdownLocked(ble.ErrTimedOut)
}

// shutdown posts teardown onto the dispatch goroutine and waits for it to
// finish. Callers already running on the dispatch goroutine (handleTimeout)
// must call shutdownLocked directly instead, to avoid deadlocking on
// postSync's own wait.
func (b *Bearer) shutdown(cause error) {
	b.postSync(func() { b.shutdownLocked(cause) })
}

// shutdownLocked tears the bearer down: closes the channel, invokes the
// closed callback, then resolves every pending outbound transaction
// (request queue, then indication queue) with a host error wrapping cause.
// It must only run on the dispatch goroutine, and is idempotent.
func (b *Bearer) shutdownLocked(cause error) {
	if b.closed {
		return
	}
	b.closed = true
	b.conn.Close()

	if b.closedCallback != nil {
		b.closedCallback(cause)
	}

	reqCurrent, reqFIFO := b.reqQueue.current, b.reqQueue.fifo
	b.reqQueue.Reset()
	indCurrent, indFIFO := b.indQueue.current, b.indQueue.fifo
	b.indQueue.Reset()

	herr := ble.NewHostError(cause)
	resolveAll := func(current *pendingTransaction, fifo []*pendingTransaction) {
		if current != nil {
			current.resolve(nil, herr)
		}
		for _, tx := range fifo {
			tx.resolve(nil, herr)
		}
	}
	resolveAll(reqCurrent, reqFIFO)
	resolveAll(indCurrent, indFIFO)

	close(b.done)
}
