// Package tls implements the sockstream contract over a TLS connection.
// There is no zero-copy path through a record layer: every byte of a file
// transfer is staged through the chunk engine so it passes encryption.
package tls

import (
	"context"
	ctls "crypto/tls"
	"io"
	"net"
	"os"
	"time"

	"sockstream/pkg/stream"
)

// Stream is the secure-transport backend.
type Stream struct {
	c *ctls.Conn
}

var _ stream.Stream = (*Stream)(nil)

// New wraps an already-handshaken TLS conn.
func New(c *ctls.Conn) *Stream { return &Stream{c: c} }

// Dial connects to address and completes the TLS handshake before returning.
func Dial(ctx context.Context, address string, conf *ctls.Config) (*Stream, error) {
	d := &ctls.Dialer{Config: conf}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return New(c.(*ctls.Conn)), nil
}

func (s *Stream) Kind() stream.Kind { return stream.KindSecure }

func (s *Stream) Send(p []byte) error {
	_, err := s.c.Write(p)
	return err
}

func (s *Stream) Recv(max int, timeout time.Duration) ([]byte, error) {
	if max <= 0 {
		max = stream.DefaultChunkSize
	}
	if timeout > 0 {
		if err := s.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer s.c.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, max)
	n, err := s.c.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}

// SendFile always uses the chunk engine. An unset Size is resolved from the
// file's length so the transfer budget is concrete before chunking starts.
func (s *Stream) SendFile(path string, opts stream.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.Size <= 0 {
		st, err := f.Stat()
		if err != nil {
			return err
		}
		size := st.Size() - opts.Offset
		if size < 0 {
			size = 0
		}
		opts.Size = size
	}
	return stream.Copy(s, f, opts)
}

// Shutdown half-closes via the TLS close_notify alert for the write side and
// via the underlying transport for the read side; crypto/tls has no notion
// of an inbound-only close.
func (s *Stream) Shutdown(how stream.ShutdownMode) error {
	switch how {
	case stream.ShutdownWrite:
		return s.c.CloseWrite()
	case stream.ShutdownRead:
		if hc, ok := s.c.NetConn().(interface{ CloseRead() error }); ok {
			return hc.CloseRead()
		}
		return s.c.Close()
	default:
		return s.c.Close()
	}
}

func (s *Stream) Close() error { return s.c.Close() }

func (s *Stream) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *Stream) RemoteAddr() net.Addr { return s.c.RemoteAddr() }

// Listener accepts inbound secure streams.
type Listener struct {
	l net.Listener
}

func Listen(address string, conf *ctls.Config) (*Listener, error) {
	l, err := ctls.Listen("tcp", address, conf)
	if err != nil {
		return nil, err
	}
	return &Listener{l: l}, nil
}

func (l *Listener) Accept() (*Stream, error) {
	c, err := l.l.Accept()
	if err != nil {
		return nil, err
	}
	return New(c.(*ctls.Conn)), nil
}

func (l *Listener) Addr() net.Addr { return l.l.Addr() }
func (l *Listener) Close() error   { return l.l.Close() }
