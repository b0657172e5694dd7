package gatt

import (
	"sync"
	"testing"

	"github.com/leso-kn/ble"
)

// buildS6Database places a declaration at handle 1, a writable attribute at
// handle 2 (whose handler is recorded by the returned recorder), and a
// write-denied attribute at handle 3, matching spec.md scenario S6.
func buildS6Database(t *testing.T) (*Database, *writeRecorder) {
	t.Helper()
	db := NewDatabase(1, 10)
	g := db.NewGrouping(typeA, 2, []byte{0x00})
	if g == nil {
		t.Fatal("failed to place S6 grouping")
	}
	rec := &writeRecorder{}
	h2 := g.AddAttribute(typeB, AccessRequirements{}, AccessRequirements{Allowed: true})
	h2.SetWriteHandler(AccessRequirements{Allowed: true}, rec.handle)
	g.AddAttribute(typeB, AccessRequirements{}, AccessRequirements{}) // handle 3: write denied
	return db, rec
}

type writeRecorder struct {
	mu    sync.Mutex
	calls []QueuedWrite
}

func (r *writeRecorder) handle(peer ble.Addr, offset int, value []byte, sink WriteSink) {
	r.mu.Lock()
	r.calls = append(r.calls, QueuedWrite{Offset: offset, Bytes: append([]byte(nil), value...)})
	r.mu.Unlock()
	sink(WriteResult{Err: ble.NoError})
}

// S6 — a pre-dispatch failure partway through the queue stops further
// dispatch but does not retroactively fail the write already sent, and the
// completion fires once with the first error observed.
func TestExecuteWriteQueue_AbortsOnPermissionFailure(t *testing.T) {
	db, rec := buildS6Database(t)

	queue := []QueuedWrite{
		{Handle: 2, Offset: 0, Bytes: []byte("ab")},
		{Handle: 3, Offset: 0, Bytes: []byte("cd")},
		{Handle: 2, Offset: 2, Bytes: []byte("ef")},
	}

	var mu sync.Mutex
	var results []WriteQueueResult
	db.ExecuteWriteQueue(testAddr("peer"), queue, ble.LinkSecurity{}, func(r WriteQueueResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 {
		t.Fatalf("completion fired %d times, want 1", len(results))
	}
	if results[0].Handle != 3 || results[0].Err != ble.ErrCodeWriteNotPermitted {
		t.Fatalf("result = %+v, want {Handle:3 Err:WriteNotPermitted}", results[0])
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 1 {
		t.Fatalf("handle 2 dispatched %d times, want 1 (queue aborted before the second write to it)", len(rec.calls))
	}
	if string(rec.calls[0].Bytes) != "ab" || rec.calls[0].Offset != 0 {
		t.Fatalf("first dispatched write = %+v, want {Offset:0 Bytes:\"ab\"}", rec.calls[0])
	}
}

func TestExecuteWriteQueue_AllSucceed(t *testing.T) {
	db, rec := buildS6Database(t)

	queue := []QueuedWrite{
		{Handle: 2, Offset: 0, Bytes: []byte("ab")},
		{Handle: 2, Offset: 2, Bytes: []byte("cd")},
	}

	done := make(chan WriteQueueResult, 1)
	db.ExecuteWriteQueue(testAddr("peer"), queue, ble.LinkSecurity{}, func(r WriteQueueResult) {
		done <- r
	})

	select {
	case r := <-done:
		if r.Err != ble.NoError || r.Handle != ble.InvalidHandle {
			t.Fatalf("result = %+v, want success", r)
		}
	default:
		t.Fatal("completion did not fire synchronously for a fully synchronous handler")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.calls) != 2 {
		t.Fatalf("dispatched %d writes, want 2", len(rec.calls))
	}
}

func TestExecuteWriteQueue_EmptyQueueSucceedsImmediately(t *testing.T) {
	db := NewDatabase(1, 10)
	done := make(chan WriteQueueResult, 1)
	db.ExecuteWriteQueue(testAddr("peer"), nil, ble.LinkSecurity{}, func(r WriteQueueResult) {
		done <- r
	})
	select {
	case r := <-done:
		if r.Err != ble.NoError {
			t.Fatalf("result = %+v, want success", r)
		}
	default:
		t.Fatal("completion did not fire for an empty queue")
	}
}

type testAddr string

func (a testAddr) Network() string { return "test" }
func (a testAddr) String() string  { return string(a) }
func (a testAddr) Bytes() []byte   { return []byte(a) }
