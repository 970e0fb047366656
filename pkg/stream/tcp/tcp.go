// Package tcp implements the sockstream contract over a plain, unencrypted
// TCP connection. File transfer prefers the kernel sendfile path exposed by
// *net.TCPConn.ReadFrom and falls back to the generic chunk engine for
// wrapped connections.
package tcp

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"sockstream/pkg/stream"
)

// Stream is the plain-transport backend.
type Stream struct {
	c net.Conn
}

var _ stream.Stream = (*Stream)(nil)

// New wraps an already-connected conn. The conn is owned by the caller; the
// Stream never outlives it.
func New(c net.Conn) *Stream { return &Stream{c: c} }

// Dial connects to address and returns the plain stream for it.
func Dial(ctx context.Context, address string) (*Stream, error) {
	d := &net.Dialer{}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

func (s *Stream) Kind() stream.Kind { return stream.KindPlain }

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
		// Peer closed; not a failure.
		return nil, nil
	}
	return nil, err
}

// SendFile transfers the file at path bounded by opts.Offset/opts.Size.
// On a *net.TCPConn the transfer goes through ReadFrom, which uses sendfile
// when the source is a regular file, so the bytes never enter user space.
func (s *Stream) SendFile(path string, opts stream.Options) error {
	tc, ok := s.c.(*net.TCPConn)
	if !ok {
		return stream.CopyFile(s, path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if opts.Offset > 0 {
		if _, err := f.Seek(opts.Offset, io.SeekStart); err != nil {
			return err
		}
	}
	var src io.Reader = f
	if opts.Size > 0 {
		// LimitedReader over *os.File keeps the sendfile fast path.
		src = &io.LimitedReader{R: f, N: opts.Size}
	}
	_, err = tc.ReadFrom(src)
	return err
}

func (s *Stream) Shutdown(how stream.ShutdownMode) error {
	tc, ok := s.c.(*net.TCPConn)
	if !ok {
		return s.c.Close()
	}
	switch how {
	case stream.ShutdownRead:
		return tc.CloseRead()
	case stream.ShutdownWrite:
		return tc.CloseWrite()
	default:
		return tc.Close()
	}
}

func (s *Stream) Close() error { return s.c.Close() }

func (s *Stream) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *Stream) RemoteAddr() net.Addr { return s.c.RemoteAddr() }

// Listener accepts inbound plain streams.
type Listener struct {
	l net.Listener
}

func Listen(address string) (*Listener, error) {
	l, err := net.Listen("tcp", address)
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
	return New(c), nil
}

func (l *Listener) Addr() net.Addr { return l.l.Addr() }
func (l *Listener) Close() error   { return l.l.Close() }
