// Package ws implements the sockstream contract over a WebSocket connection.
// WebSocket is message-framed, so Recv carries leftover message bytes across
// calls, and a Recv with max == 0 returns exactly one inbound message.
package ws

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"sockstream/pkg/stream"
)

// Stream is the WebSocket backend.
type Stream struct {
	c *websocket.Conn
	// leftover holds the tail of a message that did not fit the caller's
	// max on a previous Recv.
	leftover []byte
}

var _ stream.Stream = (*Stream)(nil)

// New wraps an already-upgraded conn.
func New(c *websocket.Conn) *Stream { return &Stream{c: c} }

// Dial connects to a ws:// or wss:// URL.
func Dial(ctx context.Context, url string) (*Stream, error) {
	c, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return New(c), nil
}

func (s *Stream) Kind() stream.Kind { return stream.KindWebSocket }

func (s *Stream) Send(p []byte) error {
	return s.c.WriteMessage(websocket.BinaryMessage, p)
}

func (s *Stream) Recv(max int, timeout time.Duration) ([]byte, error) {
	if len(s.leftover) > 0 {
		if max <= 0 || max >= len(s.leftover) {
			out := s.leftover
			s.leftover = nil
			return out, nil
		}
		out := s.leftover[:max]
		s.leftover = s.leftover[max:]
		return out, nil
	}

	if timeout > 0 {
		if err := s.c.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		defer s.c.SetReadDeadline(time.Time{})
	}
	_, msg, err := s.c.ReadMessage()
	if err != nil {
		if isPeerClosed(err) {
			return nil, nil
		}
		return nil, err
	}
	if max > 0 && len(msg) > max {
		s.leftover = msg[max:]
		msg = msg[:max]
	}
	return msg, nil
}

// isPeerClosed reports whether err is an orderly remote close rather than a
// transport failure.
func isPeerClosed(err error) bool {
	if err == io.EOF {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

func (s *Stream) SendFile(path string, opts stream.Options) error {
	return stream.CopyFile(s, path, opts)
}

// Shutdown approximates half-close on a framed transport: closing the write
// side sends a close frame, closing the read side half-closes the carrier
// when it can.
func (s *Stream) Shutdown(how stream.ShutdownMode) error {
	switch how {
	case stream.ShutdownRead:
		if hc, ok := s.c.UnderlyingConn().(interface{ CloseRead() error }); ok {
			return hc.CloseRead()
		}
		return s.c.Close()
	case stream.ShutdownWrite:
		return s.writeClose()
	default:
		_ = s.writeClose()
		return s.c.Close()
	}
}

func (s *Stream) writeClose() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return s.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
}

func (s *Stream) Close() error { return s.c.Close() }

func (s *Stream) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *Stream) RemoteAddr() net.Addr { return s.c.RemoteAddr() }
