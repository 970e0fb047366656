package ws

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// Listener upgrades inbound HTTP connections and hands them out as streams.
type Listener struct {
	l       net.Listener
	srv     *http.Server
	newCh   chan *Stream
	closeCh chan struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Listen serves the WebSocket upgrade endpoint on address and queues
// upgraded connections for Accept.
func Listen(address string) (*Listener, error) {
	nl, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	wl := &Listener{
		l:       nl,
		newCh:   make(chan *Stream, 8),
		closeCh: make(chan struct{}),
	}
	wl.srv = &http.Server{Handler: http.HandlerFunc(wl.upgrade)}
	go func() { _ = wl.srv.Serve(nl) }()
	return wl, nil
}

func (l *Listener) upgrade(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case l.newCh <- New(c):
	default:
		_ = c.Close()
	}
}

func (l *Listener) Accept(ctx context.Context) (*Stream, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closeCh:
		return nil, errors.New("ws listener closed")
	case s := <-l.newCh:
		return s, nil
	}
}

func (l *Listener) Addr() net.Addr { return l.l.Addr() }

func (l *Listener) Close() error {
	select {
	case <-l.closeCh:
	default:
		close(l.closeCh)
	}
	return l.srv.Close()
}
