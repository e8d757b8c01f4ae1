package server

import (
	"bytes"
	"net"
	"sync"
	"testing"

	"github.com/wakesync/wakesync/common"
)

func TestFrameRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	payload := []byte(`{"method":"schedule_alarm","message":{"id":"wake"}}`)
	var wmu, rmu sync.Mutex

	errc := make(chan error, 1)
	go func() {
		errc <- write(&wmu, a, payload)
	}()

	got, err := read(&rmu, b)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestWriteRejectsOversizePayload(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	var wmu sync.Mutex
	if err := write(&wmu, a, make([]byte, common.MaxMessageSize+1)); err == nil {
		t.Fatal("expected oversize payload to be rejected")
	}
}

func TestReadRejectsOversizeHeader(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	go func() {
		a.Write(intToBytes(uint32(common.MaxMessageSize) + 1))
	}()

	var rmu sync.Mutex
	if _, err := read(&rmu, b); err == nil {
		t.Fatal("expected oversize header to be rejected")
	}
}

func TestIntBytesRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 255, 256, 1 << 20, 1<<32 - 1} {
		if got := bytesToInt(intToBytes(v)); got != v {
			t.Errorf("bytesToInt(intToBytes(%d)) = %d", v, got)
		}
	}
}
