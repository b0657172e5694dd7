package att

import "github.com/leso-kn/ble"

// handleInbound classifies one raw frame read off the channel and routes
// it per spec.md §4.6. It always runs on the dispatch goroutine.
func (b *Bearer) handleInbound(raw []byte) {
	if b.closed {
		return
	}

	if len(raw) == 0 || len(raw) > b.mtu {
		b.log.Errorf("att: dropped frame of length %d against mtu %d", len(raw), b.mtu)
		b.shutdownLocked(ble.ErrFailed)
		return
	}

	op := ble.OpCode(raw[0])
	frame := Frame{OpCode: op, Class: ble.Classify(op), Raw: raw}

	switch frame.Class {
	case ble.ClassResponse:
		b.completeOutbound(b.reqQueue, frame)
	case ble.ClassConfirmation:
		b.completeOutbound(b.indQueue, frame)
	case ble.ClassRequest:
		b.beginInbound(&b.remoteRequest, frame)
	case ble.ClassIndication:
		b.beginInbound(&b.remoteIndication, frame)
	case ble.ClassCommand, ble.ClassNotification:
		if h, ok := b.handlers.Lookup(frame.OpCode); ok {
			h(0, frame.OpCode, frame.Raw[1:])
		}
	default:
		b.replyError(frame.OpCode, ble.InvalidHandle, ble.ErrCodeRequestNotSupported)
	}
}

// beginInbound opens a new inbound transaction in slot and dispatches it to
// its registered handler. A slot already occupied is a sequential protocol
// violation (the peer started a second request/indication before the first
// was answered) and shuts the bearer down; an opcode with no handler draws
// an immediate Request Not Supported and the slot never opens.
func (b *Bearer) beginInbound(slot **remoteTransaction, frame Frame) {
	if *slot != nil {
		b.log.Errorf("att: %s received while one is already in flight", frame.Class)
		b.shutdownLocked(ble.ErrFailed)
		return
	}

	h, ok := b.handlers.Lookup(frame.OpCode)
	if !ok {
		b.replyError(frame.OpCode, ble.InvalidHandle, ble.ErrCodeRequestNotSupported)
		return
	}
	tid := b.nextRemoteTransactionID()
	*slot = &remoteTransaction{id: tid, opCode: frame.OpCode}
	h(tid, frame.OpCode, frame.Raw[1:])
}

// completeOutbound implements HandleEnd (spec §4.6): match the inbound
// frame against q's in-flight transaction and either resolve it or shut
// the bearer down on a protocol violation.
func (b *Bearer) completeOutbound(q *queue, frame Frame) {
	if !q.HasCurrent() {
		b.log.Errorf("att: unexpected %s with no outstanding %s transaction", frame.Class, q.category)
		b.shutdownLocked(ble.ErrFailed)
		return
	}
	current := q.current

	if frame.OpCode == ble.ErrorResponseCode && len(frame.Raw) >= 5 {
		resp := ErrorResponse(frame.Raw)
		if resp.RequestOpcode() != current.opCode {
			b.log.Errorf("att: error response request opcode 0x%02x does not match outstanding 0x%02x",
				uint8(resp.RequestOpcode()), uint8(current.opCode))
			b.shutdownLocked(ble.ErrFailed)
			return
		}
		b.resolveOrRetry(q, current, resp.ErrorCode(), resp.AttributeHandle())
		return
	}

	target, ok := ble.MatchingTransactionCode(frame.OpCode)
	if !ok || target != current.opCode {
		b.log.Errorf("att: %s (opcode 0x%02x) does not match outstanding 0x%02x transaction",
			frame.Class, uint8(frame.OpCode), uint8(current.opCode))
		b.shutdownLocked(ble.ErrFailed)
		return
	}

	tx := q.ClearCurrent()
	tx.resolve(frame.Raw, nil)
	b.trySend(q)
}

// resolveOrRetry applies the security-triggered retry ladder (spec §4.6) to
// an Error Response against q's current transaction, then either resolves
// it with the original error or, on a request queue, starts a security
// upgrade and defers resolution until that settles. Indications have no
// error path of their own (a Confirmation carries no error code), so this
// is only ever reached via b.reqQueue.
func (b *Bearer) resolveOrRetry(q *queue, current *pendingTransaction, code ble.ErrorCode, handle ble.Handle) {
	if q == b.reqQueue {
		link := b.conn.LinkSecurity()
		if target, retryable := securityTarget(code, link.Level); retryable &&
			current.securityRetryLevel < target && target > link.Level {
			current.securityRetryLevel = target
			b.startSecurityUpgrade(q, current, code, handle)
			return
		}
	}

	tx := q.ClearCurrent()
	tx.resolve(nil, ble.NewProtocolError(code, handle))
	b.trySend(q)
}

// startSecurityUpgrade asks the connection to raise its link security and,
// once (asynchronously) resolved, either resends current at the head of q
// or surfaces the original error — each exactly once, whichever comes
// first of a successful upgrade or a failed/declined one.
func (b *Bearer) startSecurityUpgrade(q *queue, current *pendingTransaction, code ble.ErrorCode, handle ble.Handle) {
	q.StopTimer()

	ch := make(chan ble.EncryptionChangedInfo, 1)
	if err := b.conn.StartEncryption(ch); err != nil {
		b.log.Errorf("att: security upgrade request failed: %v", err)
		tx := q.ClearCurrent()
		tx.resolve(nil, ble.NewProtocolError(code, handle))
		b.trySend(q)
		return
	}

	go func() {
		var info ble.EncryptionChangedInfo
		select {
		case info = <-ch:
		case <-b.done:
			return
		}
		b.post(func() { b.finishSecurityUpgrade(q, current, info, code, handle) })
	}()
}

func (b *Bearer) finishSecurityUpgrade(q *queue, tx *pendingTransaction, info ble.EncryptionChangedInfo, code ble.ErrorCode, handle ble.Handle) {
	if q.current != tx {
		return // already resolved another way (e.g. shutdown) while upgrading
	}
	if !info.Enabled || info.Err != nil {
		cleared := q.ClearCurrent()
		cleared.resolve(nil, ble.NewProtocolError(code, handle))
		b.trySend(q)
		return
	}
	q.ClearCurrent()
	q.EnqueueFront(tx)
	b.trySend(q)
}

// replyError writes an Error Response directly, bypassing the transaction
// queues — used for inbound PDUs this bearer refuses outright (unsupported
// opcode, no handler) rather than ones a registered handler declines via
// ReplyWithError.
func (b *Bearer) replyError(reqOp ble.OpCode, handle ble.Handle, code ble.ErrorCode) {
	buf := make([]byte, 5)
	resp := NewErrorResponse(buf, reqOp, handle, code)
	if err := b.write(resp); err != nil {
		b.log.Errorf("att: failed to send error response: %v", err)
	}
}
