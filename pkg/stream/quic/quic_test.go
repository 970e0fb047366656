package quic

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sockstream/pkg/stream"
)

// pair returns two connected QUIC streams over loopback UDP with the
// ephemeral self-signed listener certificate.
func pair(t *testing.T) (*Stream, *Stream) {
	t.Helper()
	l, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	type res struct {
		s   *Stream
		err error
	}
	ch := make(chan res, 1)
	go func() {
		s, err := l.Accept(ctx)
		ch <- res{s, err}
	}()

	client, err := Dial(ctx, l.Addr().String(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	// QUIC streams are lazy: the listener cannot accept one until the
	// dialer has sent something on it.
	if err := client.Send([]byte("open")); err != nil {
		t.Fatalf("initial send: %v", err)
	}

	r := <-ch
	if r.err != nil {
		t.Fatalf("accept: %v", r.err)
	}
	t.Cleanup(func() { r.s.Close() })

	got, err := r.s.Recv(4, 5*time.Second)
	if err != nil || string(got) != "open" {
		t.Fatalf("opening frame: got %q, %v", got, err)
	}
	return client, r.s
}

func TestSendRecv(t *testing.T) {
	client, server := pair(t)

	msg := []byte("hello over quic")
	if err := client.Send(msg); err != nil {
		t.Fatalf("send: %v", err)
	}
	var buf bytes.Buffer
	for buf.Len() < len(msg) {
		chunk, err := server.Recv(len(msg)-buf.Len(), 5*time.Second)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		buf.Write(chunk)
	}
	if !bytes.Equal(buf.Bytes(), msg) {
		t.Fatalf("recv mismatch: got %q, want %q", buf.Bytes(), msg)
	}
	if client.Kind() != stream.KindQUIC {
		t.Fatalf("unexpected kind %v", client.Kind())
	}
}

func TestRecvPeerClosed(t *testing.T) {
	client, server := pair(t)

	// Closing the write side sends a stream FIN, which the peer must see
	// as orderly closure.
	if err := client.Shutdown(stream.ShutdownWrite); err != nil {
		t.Fatalf("shutdown write: %v", err)
	}
	got, err := server.Recv(16, 5*time.Second)
	if err != nil {
		t.Fatalf("peer close must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil payload on peer close, got %v", got)
	}
}

func TestSendFileChunked(t *testing.T) {
	client, server := pair(t)

	data := make([]byte, 10000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	go func() {
		if err := client.SendFile(path, stream.Options{Offset: 100, Size: 500}); err != nil {
			t.Errorf("send file: %v", err)
		}
		client.Shutdown(stream.ShutdownWrite)
	}()

	var buf bytes.Buffer
	for {
		chunk, err := server.Recv(0, 5*time.Second)
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if chunk == nil {
			break
		}
		buf.Write(chunk)
	}
	if !bytes.Equal(buf.Bytes(), data[100:600]) {
		t.Fatalf("received %d bytes, want source[100:600]", buf.Len())
	}
}
