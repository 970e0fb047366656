// Package quic implements the sockstream contract over a QUIC bidirectional
// stream. QUIC is always encrypted, so file transfer goes through the chunk
// engine like the TLS backend.
package quic

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"

	quicgo "github.com/quic-go/quic-go"

	"sockstream/pkg/stream"
)

const alpn = "sockstream"

// Stream is a QUIC-backed stream. It owns one bidirectional QUIC stream on a
// connection it keeps only for addressing and full close.
type Stream struct {
	conn quicgo.Connection
	qs   quicgo.Stream
}

var _ stream.Stream = (*Stream)(nil)

// Dial establishes a QUIC connection to address and opens its bidirectional
// stream. A nil conf gets a client config that skips verification; callers
// doing real authentication pass their own.
func Dial(ctx context.Context, address string, conf *tls.Config) (*Stream, error) {
	if conf == nil {
		conf = &tls.Config{InsecureSkipVerify: true}
	}
	conf = conf.Clone()
	conf.NextProtos = []string{alpn}
	conf.MinVersion = tls.VersionTLS13

	c, err := quicgo.DialAddr(ctx, address, conf, &quicgo.Config{})
	if err != nil {
		return nil, err
	}
	qs, err := c.OpenStreamSync(ctx)
	if err != nil {
		_ = c.CloseWithError(0, "open stream failed")
		return nil, err
	}
	return &Stream{conn: c, qs: qs}, nil
}

func (s *Stream) Kind() stream.Kind { return stream.KindQUIC }

func (s *Stream) Send(p []byte) error {
	_, err := s.qs.Write(p)
	return err
}

func (s *Stream) Recv(max int, timeout time.Duration) ([]byte, error) {
	if max <= 0 {
		max = stream.DefaultChunkSize
	}
	if timeout > 0 {
		if err := s.qs.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer s.qs.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, max)
	n, err := s.qs.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, nil
	}
	return nil, err
}

func (s *Stream) SendFile(path string, opts stream.Options) error {
	return stream.CopyFile(s, path, opts)
}

// Shutdown maps the half-close modes onto QUIC stream states: closing the
// write side sends FIN, closing the read side aborts inbound flow control.
func (s *Stream) Shutdown(how stream.ShutdownMode) error {
	switch how {
	case stream.ShutdownRead:
		s.qs.CancelRead(0)
		return nil
	case stream.ShutdownWrite:
		return s.qs.Close()
	default:
		s.qs.CancelRead(0)
		return s.qs.Close()
	}
}

// Close tears down the stream and its connection.
func (s *Stream) Close() error {
	_ = s.qs.Close()
	return s.conn.CloseWithError(0, "")
}

func (s *Stream) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *Stream) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// Listener accepts inbound QUIC streams, one bidirectional stream per
// connection (the dialer opens it, we accept it).
type Listener struct {
	l *quicgo.Listener
}

// Listen starts a QUIC listener on address. A nil conf gets an ephemeral
// self-signed certificate, which is enough for peers that verify identity at
// a higher layer.
func Listen(address string, conf *tls.Config) (*Listener, error) {
	if conf == nil {
		cert, err := selfSignedCert()
		if err != nil {
			return nil, err
		}
		conf = &tls.Config{Certificates: []tls.Certificate{cert}}
	}
	conf = conf.Clone()
	conf.NextProtos = []string{alpn}
	conf.MinVersion = tls.VersionTLS13

	l, err := quicgo.ListenAddr(address, conf, &quicgo.Config{})
	if err != nil {
		return nil, err
	}
	return &Listener{l: l}, nil
}

func (l *Listener) Accept(ctx context.Context) (*Stream, error) {
	c, err := l.l.Accept(ctx)
	if err != nil {
		return nil, err
	}
	qs, err := c.AcceptStream(ctx)
	if err != nil {
		_ = c.CloseWithError(0, "accept stream failed")
		return nil, err
	}
	return &Stream{conn: c, qs: qs}, nil
}

func (l *Listener) Addr() net.Addr { return l.l.Addr() }
func (l *Listener) Close() error   { return l.l.Close() }
