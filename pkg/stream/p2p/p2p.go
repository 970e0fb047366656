// Package p2p implements the sockstream contract over a libp2p stream.
// libp2p streams are secured and multiplexed, so file transfer uses the
// chunk engine; half-close maps directly onto CloseRead/CloseWrite.
package p2p

import (
	"io"
	"net"
	"time"

	"github.com/libp2p/go-libp2p/core/network"
	"github.com/multiformats/go-multiaddr"

	"sockstream/pkg/stream"
)

// Stream is the libp2p backend.
type Stream struct {
	st network.Stream
}

var _ stream.Stream = (*Stream)(nil)

// New wraps an open libp2p stream.
func New(st network.Stream) *Stream { return &Stream{st: st} }

func (s *Stream) Kind() stream.Kind { return stream.KindP2P }

func (s *Stream) Send(p []byte) error {
	_, err := s.st.Write(p)
	return err
}

func (s *Stream) Recv(max int, timeout time.Duration) ([]byte, error) {
	if max <= 0 {
		max = stream.DefaultChunkSize
	}
	if timeout > 0 {
		if err := s.st.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer s.st.SetReadDeadline(time.Time{})
	}
	buf := make([]byte, max)
	n, err := s.st.Read(buf)
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

func (s *Stream) Shutdown(how stream.ShutdownMode) error {
	switch how {
	case stream.ShutdownRead:
		return s.st.CloseRead()
	case stream.ShutdownWrite:
		return s.st.CloseWrite()
	default:
		return s.st.Close()
	}
}

func (s *Stream) Close() error { return s.st.Close() }

func (s *Stream) LocalAddr() net.Addr {
	return maddr{s.st.Conn().LocalMultiaddr()}
}

func (s *Stream) RemoteAddr() net.Addr {
	return maddr{s.st.Conn().RemoteMultiaddr()}
}

// maddr presents a multiaddr through the net.Addr interface.
type maddr struct {
	ma multiaddr.Multiaddr
}

func (a maddr) Network() string { return "libp2p" }

func (a maddr) String() string {
	if a.ma == nil {
		return ""
	}
	return a.ma.String()
}
