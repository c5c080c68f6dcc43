package protocol

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestCodecPlaintextRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := NewCodec(server, time.Second)
	cc := NewCodec(client, time.Second)

	pkt := RawPacket{ID: 0x05, Data: []byte("hello world")}

	done := make(chan error, 1)
	go func() { done <- sc.WritePacket(pkt) }()

	got, err := cc.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if got.ID != pkt.ID || !bytes.Equal(got.Data, pkt.Data) {
		t.Fatalf("got %+v, want %+v", got, pkt)
	}
}

func TestCodecCompressionRoundTrip(t *testing.T) {
	for _, size := range []int{10, 512} {
		server, client := net.Pipe()
		sc := NewCodec(server, time.Second)
		cc := NewCodec(client, time.Second)
		sc.EnableCompression(256)
		cc.EnableCompression(256)

		data := bytes.Repeat([]byte{0xab}, size)
		pkt := RawPacket{ID: 0x02, Data: data}

		done := make(chan error, 1)
		go func() { done <- sc.WritePacket(pkt) }()

		got, err := cc.ReadPacket()
		if err != nil {
			t.Fatalf("size=%d ReadPacket: %v", size, err)
		}
		if err := <-done; err != nil {
			t.Fatalf("size=%d WritePacket: %v", size, err)
		}
		if got.ID != pkt.ID || !bytes.Equal(got.Data, pkt.Data) {
			t.Fatalf("size=%d mismatch: got id=%d len=%d, want id=%d len=%d", size, got.ID, len(got.Data), pkt.ID, len(pkt.Data))
		}
		server.Close()
		client.Close()
	}
}

func TestCodecEncryptionRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := NewCodec(server, time.Second)
	cc := NewCodec(client, time.Second)

	key := bytes.Repeat([]byte{0x11}, 16)
	if err := sc.EnableEncryption(key); err != nil {
		t.Fatal(err)
	}
	if err := cc.EnableEncryption(key); err != nil {
		t.Fatal(err)
	}

	pkt := RawPacket{ID: 0x01, Data: []byte("encrypted payload, somewhat longer than a block")}

	done := make(chan error, 1)
	go func() { done <- sc.WritePacket(pkt) }()

	got, err := cc.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if got.ID != pkt.ID || !bytes.Equal(got.Data, pkt.Data) {
		t.Fatalf("got %+v, want %+v", got, pkt)
	}
}

func TestCodecEncryptionThenCompression(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sc := NewCodec(server, time.Second)
	cc := NewCodec(client, time.Second)
	sc.EnableCompression(64)
	cc.EnableCompression(64)

	key := bytes.Repeat([]byte{0x22}, 16)
	if err := sc.EnableEncryption(key); err != nil {
		t.Fatal(err)
	}
	if err := cc.EnableEncryption(key); err != nil {
		t.Fatal(err)
	}

	pkt := RawPacket{ID: 0x00, Data: bytes.Repeat([]byte("x"), 300)}

	done := make(chan error, 1)
	go func() { done <- sc.WritePacket(pkt) }()

	got, err := cc.ReadPacket()
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("WritePacket: %v", err)
	}
	if got.ID != pkt.ID || !bytes.Equal(got.Data, pkt.Data) {
		t.Fatalf("mismatch after encryption+compression layering")
	}
}

func TestCodecReadTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	cc := NewCodec(client, 20*time.Millisecond)
	_, err := cc.ReadPacket()
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}
