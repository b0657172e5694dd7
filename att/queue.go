package att

import (
	"time"

	"github.com/leso-kn/ble"
)

// Completion is invoked exactly once when a locally-started transaction
// resolves: either with the response payload, or with a TransactionError
// describing why it didn't complete.
type Completion func(resp []byte, err *ble.TransactionError)

// pendingTransaction is an outbound request or indication awaiting its
// response/confirmation.
type pendingTransaction struct {
	opCode            ble.OpCode
	pdu               []byte // a copy: a security retry may resend it verbatim
	completion        Completion
	securityRetryLevel ble.SecurityLevel
}

func (t *pendingTransaction) resolve(resp []byte, err *ble.TransactionError) {
	if t.completion != nil {
		t.completion(resp, err)
	}
}

// sender abstracts "write this PDU to the channel," letting the queue stay
// ignorant of ble.Conn.
type sender func(pdu []byte) error

// queue holds pending outbound transactions for one opcode category
// (request or indication): at most one "current" transaction in flight,
// the rest FIFO. Category is used only for logging.
type queue struct {
	category string
	fifo     []*pendingTransaction
	current  *pendingTransaction
	timer    *time.Timer
	log      ble.Logger
}

func newQueue(category string, log ble.Logger) *queue {
	return &queue{category: category, log: log}
}

// Enqueue appends tx to the FIFO.
func (q *queue) Enqueue(tx *pendingTransaction) {
	q.fifo = append(q.fifo, tx)
}

// EnqueueFront inserts tx at the head of the FIFO — used by the
// security-retry path to resend the same PDU ahead of anything else
// waiting.
func (q *queue) EnqueueFront(tx *pendingTransaction) {
	q.fifo = append([]*pendingTransaction{tx}, q.fifo...)
}

// HasCurrent reports whether a transaction is in flight.
func (q *queue) HasCurrent() bool { return q.current != nil }

// TrySendNext sends the next queued transaction if none is currently in
// flight. Entries that fail to send (send returns an error, modeled as an
// allocation/resource failure) are resolved with ErrOutOfMemory and
// skipped; the next entry is tried until one sends or the FIFO drains.
func (q *queue) TrySendNext(send sender, onTimeout func(*pendingTransaction)) {
	if q.current != nil {
		return
	}
	for len(q.fifo) > 0 {
		tx := q.fifo[0]
		q.fifo = q.fifo[1:]

		if err := send(tx.pdu); err != nil {
			q.log.Errorf("%s: send failed, resolving as out of memory: %v", q.category, err)
			tx.resolve(nil, ble.NewHostError(ble.ErrOutOfMemory))
			continue
		}

		q.current = tx
		q.timer = time.AfterFunc(ble.TransactionTimeout, func() {
			onTimeout(tx)
		})
		return
	}
}

// StopTimer cancels the running timeout without otherwise touching the
// in-flight transaction — used while a security upgrade is pending, so the
// original send's deadline doesn't fire mid-upgrade.
func (q *queue) StopTimer() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// ClearCurrent cancels the running timer and returns ownership of the
// in-flight transaction. Precondition: HasCurrent().
func (q *queue) ClearCurrent() *pendingTransaction {
	tx := q.current
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.current = nil
	return tx
}

// Reset cancels the timer and drops both the current transaction and the
// FIFO, without resolving anything — callers that need completions invoked
// should call InvokeErrorAll first.
func (q *queue) Reset() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.current = nil
	q.fifo = nil
}

// InvokeErrorAll resolves the current transaction (if any) and every
// queued one with err, in FIFO order, current first.
func (q *queue) InvokeErrorAll(err error) {
	herr := ble.NewHostError(err)
	if q.current != nil {
		q.current.resolve(nil, herr)
	}
	for _, tx := range q.fifo {
		tx.resolve(nil, herr)
	}
}
