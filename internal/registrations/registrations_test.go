package registrations

import (
	"testing"

	"github.com/sebas/sipline/internal/peeraddr"
)

func addr(port int) peeraddr.PeerAddress {
	return peeraddr.PeerAddress{IP: "127.0.0.1", Port: port, Transport: peeraddr.UDP}
}

func TestRegisterReturnsTrueOnlyWhenNew(t *testing.T) {
	tbl := New()

	if !tbl.Register("alice", addr(40001)) {
		t.Fatal("first Register should return true")
	}
	if tbl.Register("alice", addr(40002)) {
		t.Fatal("re-Register should return false")
	}

	got, ok := tbl.AddressOf("alice")
	if !ok || got != addr(40002) {
		t.Fatalf("AddressOf = %v, %v, want updated address", got, ok)
	}
}

func TestRegisterSameAddressIsIdempotent(t *testing.T) {
	tbl := New()
	tbl.Register("alice", addr(40001))
	tbl.Register("alice", addr(40001))

	got, ok := tbl.AddressOf("alice")
	if !ok || got != addr(40001) {
		t.Fatalf("AddressOf = %v, %v", got, ok)
	}
}

func TestUnregister(t *testing.T) {
	tbl := New()

	if tbl.Unregister("alice") {
		t.Fatal("Unregister of absent user should return false")
	}

	tbl.Register("alice", addr(40001))
	if !tbl.Unregister("alice") {
		t.Fatal("Unregister of present user should return true")
	}

	if _, ok := tbl.AddressOf("alice"); ok {
		t.Fatal("alice should no longer be registered")
	}
}
