package att

import "github.com/leso-kn/ble"

// HandlerID identifies a registered inbound-PDU handler. 0 is reserved and
// never issued.
type HandlerID uint16

// InvalidHandlerID is returned by RegisterHandler on failure.
const InvalidHandlerID HandlerID = 0

// TransactionID identifies one inbound request or indication awaiting a
// Reply/ReplyWithError. 0 means "not transactional" (a command or
// notification has no completion to reply to).
type TransactionID uint64

// Handler processes one inbound PDU. tid is 0 for commands/notifications.
type Handler func(tid TransactionID, op ble.OpCode, payload []byte)

// handlerRegistry is the bidirectional HandlerID <-> OpCode map described
// in the design notes: at most one handler per opcode, ids allocated from a
// monotonic counter that skips the reserved zero value on wraparound.
type handlerRegistry struct {
	nextID   HandlerID
	byID     map[HandlerID]ble.OpCode
	byOpCode map[ble.OpCode]Handler
	idOf     map[ble.OpCode]HandlerID
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		byID:     make(map[HandlerID]ble.OpCode),
		byOpCode: make(map[ble.OpCode]Handler),
		idOf:     make(map[ble.OpCode]HandlerID),
	}
}

// Register adds h for op. Fails (returns InvalidHandlerID) if op already
// has a handler.
func (r *handlerRegistry) Register(op ble.OpCode, h Handler) HandlerID {
	if _, exists := r.byOpCode[op]; exists {
		return InvalidHandlerID
	}
	r.nextID++
	if r.nextID == InvalidHandlerID {
		r.nextID++ // skip the reserved zero value on wraparound
	}
	id := r.nextID
	r.byID[id] = op
	r.byOpCode[op] = h
	r.idOf[op] = id
	return id
}

// Unregister removes the handler for id, if any. Unregistering an invalid
// or unknown id is a no-op.
func (r *handlerRegistry) Unregister(id HandlerID) {
	if id == InvalidHandlerID {
		return
	}
	op, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byOpCode, op)
	delete(r.idOf, op)
}

// Lookup returns the handler registered for op, if any.
func (r *handlerRegistry) Lookup(op ble.OpCode) (Handler, bool) {
	h, ok := r.byOpCode[op]
	return h, ok
}
