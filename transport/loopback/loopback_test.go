package loopback

import (
	"testing"
	"time"

	"github.com/leso-kn/ble"
)

func TestNewPair_CarriesBytes(t *testing.T) {
	a, b := NewPair("server", "client", ble.NopLogger{})
	defer a.Close()
	defer b.Close()

	if a.LocalAddr().String() != "server" || a.RemoteAddr().String() != "client" {
		t.Fatalf("a addrs = %v/%v, want server/client", a.LocalAddr(), a.RemoteAddr())
	}
	if b.LocalAddr().String() != "client" || b.RemoteAddr().String() != "server" {
		t.Fatalf("b addrs = %v/%v, want client/server", b.LocalAddr(), b.RemoteAddr())
	}

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 3)
		a.Read(buf)
		if string(buf) != "abc" {
			t.Errorf("read %q, want abc", buf)
		}
		close(done)
	}()

	if _, err := b.Write([]byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read never completed")
	}
}

func TestNewPair_SecurityHandshakeLinksBothEnds(t *testing.T) {
	a, b := NewPair("server", "client", ble.NopLogger{})
	defer a.Close()
	defer b.Close()

	chA := make(chan ble.EncryptionChangedInfo, 1)
	chB := make(chan ble.EncryptionChangedInfo, 1)
	if err := a.StartEncryption(chA); err != nil {
		t.Fatalf("a.StartEncryption: %v", err)
	}
	if err := b.StartEncryption(chB); err != nil {
		t.Fatalf("b.StartEncryption: %v", err)
	}

	for _, ch := range []chan ble.EncryptionChangedInfo{chA, chB} {
		select {
		case info := <-ch:
			if !info.Enabled {
				t.Fatalf("info = %+v, want Enabled", info)
			}
		case <-time.After(time.Second):
			t.Fatal("StartEncryption never completed")
		}
	}

	if a.LinkSecurity().Level != ble.Encrypted || b.LinkSecurity().Level != ble.Encrypted {
		t.Fatalf("levels = %v/%v, want Encrypted/Encrypted", a.LinkSecurity().Level, b.LinkSecurity().Level)
	}
}

func TestConn_CloseClosesDisconnectedChannel(t *testing.T) {
	a, b := NewPair("server", "client", ble.NopLogger{})
	defer b.Close()

	select {
	case <-a.Disconnected():
		t.Fatal("disconnected channel closed before Close")
	default:
	}

	a.Close()
	select {
	case <-a.Disconnected():
	case <-time.After(time.Second):
		t.Fatal("Disconnected channel never closed")
	}
}
