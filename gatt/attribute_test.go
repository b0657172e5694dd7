package gatt

import (
	"testing"

	"github.com/leso-kn/ble"
)

func TestAttribute_ReadAsync_InvokesHandlerOnAccessGranted(t *testing.T) {
	db := NewDatabase(1, 10)
	g := db.NewGrouping(typeA, 1, []byte{0x01})
	if g == nil {
		t.Fatal("failed to place grouping")
	}
	attr := g.AddAttribute(typeB, AccessRequirements{Allowed: true}, AccessRequirements{})

	var got ReadResult
	attr.SetReadHandler(AccessRequirements{Allowed: true}, func(peer ble.Addr, offset int, sink ReadSink) {
		sink(ReadResult{Value: []byte("dynamic")})
	})

	ok := attr.ReadAsync(testAddr("peer"), 0, ble.LinkSecurity{}, func(r ReadResult) { got = r })
	if !ok {
		t.Fatal("ReadAsync returned false")
	}
	if string(got.Value) != "dynamic" {
		t.Fatalf("value = %q, want %q", got.Value, "dynamic")
	}
}

func TestAttribute_ReadAsync_FalseWithoutHandler(t *testing.T) {
	db := NewDatabase(1, 10)
	g := db.NewGrouping(typeA, 1, []byte{0x01})
	attr := g.AddAttribute(typeB, AccessRequirements{Allowed: true}, AccessRequirements{})

	if attr.ReadAsync(testAddr("peer"), 0, ble.LinkSecurity{}, func(ReadResult) {}) {
		t.Fatal("ReadAsync returned true with no read handler installed")
	}
}

func TestAttribute_ReadAsync_FalseWhenAccessDenied(t *testing.T) {
	db := NewDatabase(1, 10)
	g := db.NewGrouping(typeA, 1, []byte{0x01})
	attr := g.AddAttribute(typeB, AccessRequirements{}, AccessRequirements{})

	called := false
	attr.SetReadHandler(AccessRequirements{Allowed: true, EncryptionRequired: true}, func(peer ble.Addr, offset int, sink ReadSink) {
		called = true
	})

	if attr.ReadAsync(testAddr("peer"), 0, ble.LinkSecurity{}, func(ReadResult) {}) {
		t.Fatal("ReadAsync returned true despite insufficient link security")
	}
	if called {
		t.Fatal("read handler invoked despite denied access")
	}
}
