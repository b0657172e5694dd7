package gatt

import (
	"sync"

	"github.com/leso-kn/ble"
)

// QueuedWrite is one entry of a pending Execute Write queue.
type QueuedWrite struct {
	Handle ble.Handle
	Offset int
	Bytes  []byte
}

// WriteQueueResult is the outcome of ExecuteWriteQueue: Err is ble.NoError
// on overall success, in which case Handle is ble.InvalidHandle.
type WriteQueueResult struct {
	Handle ble.Handle
	Err    ble.ErrorCode
}

// WriteQueueCompletion is invoked exactly once by ExecuteWriteQueue.
type WriteQueueCompletion func(WriteQueueResult)

// writeCoalescer implements Design Notes §9's "first error wins, counter of
// outstanding writes" pattern with a mutex instead of relying on the
// single-threaded assumption the spec's source makes — nothing in this
// module's concurrency model guarantees a WriteHandler runs on the
// database's own goroutine. See DESIGN.md's Open Question resolution.
type writeCoalescer struct {
	mu          sync.Mutex
	fired       bool
	outstanding int
	loopDone    bool
	completion  WriteQueueCompletion
}

func (c *writeCoalescer) fireLocked(handle ble.Handle, code ble.ErrorCode) {
	if c.fired {
		return
	}
	c.fired = true
	c.completion(WriteQueueResult{Handle: handle, Err: code})
}

func (c *writeCoalescer) maybeFireSuccessLocked() {
	if !c.fired && c.loopDone && c.outstanding == 0 {
		c.fired = true
		c.completion(WriteQueueResult{Handle: ble.InvalidHandle, Err: ble.NoError})
	}
}

// reportLocalError fires a pre-dispatch (or dispatch-rejected) failure —
// first one wins, same as an async handler error.
func (c *writeCoalescer) reportLocalError(handle ble.Handle, code ble.ErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fireLocked(handle, code)
}

// reserve counts a write as dispatched and in flight.
func (c *writeCoalescer) reserve() {
	c.mu.Lock()
	c.outstanding++
	c.mu.Unlock()
}

// release undoes reserve for a write that WriteAsync turned out to refuse.
func (c *writeCoalescer) release() {
	c.mu.Lock()
	c.outstanding--
	c.mu.Unlock()
}

// settle records one dispatched write's outcome.
func (c *writeCoalescer) settle(handle ble.Handle, code ble.ErrorCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outstanding--
	if code != ble.NoError {
		c.fireLocked(handle, code)
		return
	}
	c.maybeFireSuccessLocked()
}

// finishLoop marks that no more writes will be dispatched, allowing success
// to fire once the outstanding count reaches zero (it may already be zero).
func (c *writeCoalescer) finishLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loopDone = true
	c.maybeFireSuccessLocked()
}

// ExecuteWriteQueue executes a prepared Execute Write queue against db, per
// spec.md §4.4: writes are dispatched to their attributes' handlers in FIFO
// order without waiting for earlier completions, but a pre-dispatch failure
// (unknown handle, oversized value, a permission re-check that now fails,
// or a write handler that refuses dispatch) stops further dispatch. The
// completion fires with the first error observed, by FIFO order, or with
// success once every dispatched write has settled without one.
func (db *Database) ExecuteWriteQueue(peer ble.Addr, queue []QueuedWrite, link ble.LinkSecurity, completion WriteQueueCompletion) {
	if len(queue) == 0 {
		completion(WriteQueueResult{Handle: ble.InvalidHandle, Err: ble.NoError})
		return
	}

	c := &writeCoalescer{completion: completion}

	for _, qw := range queue {
		attr := db.FindAttribute(qw.Handle)
		if attr == nil {
			c.reportLocalError(qw.Handle, ble.ErrCodeInvalidHandle)
			break
		}
		if len(qw.Bytes) > ble.MaxAttributeValueLength {
			c.reportLocalError(qw.Handle, ble.ErrCodeInvalidAttrValueLen)
			break
		}
		if code := CheckAccess(attr.WriteRequirements(), link, OpWrite); code != ble.NoError {
			c.reportLocalError(qw.Handle, code)
			break
		}

		handle := qw.Handle
		c.reserve()
		dispatched := attr.WriteAsync(peer, qw.Offset, qw.Bytes, link, func(res WriteResult) {
			c.settle(handle, res.Err)
		})
		if !dispatched {
			c.release()
			c.reportLocalError(qw.Handle, ble.ErrCodeWriteNotPermitted)
			break
		}
	}

	c.finishLoop()
}
