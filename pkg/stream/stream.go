package stream

import (
	"net"
	"time"
)

// Kind identifies the transport backing a Stream.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlain
	KindSecure
	KindQUIC
	KindWebSocket
	KindP2P
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindSecure:
		return "secure"
	case KindQUIC:
		return "quic"
	case KindWebSocket:
		return "websocket"
	case KindP2P:
		return "p2p"
	default:
		return "unknown"
	}
}

// ShutdownMode selects which direction of a stream to close.
type ShutdownMode int

const (
	// ShutdownBoth closes both directions. Zero value, so it is the
	// default for callers that do not care about half-close.
	ShutdownBoth ShutdownMode = iota
	ShutdownRead
	ShutdownWrite
)

func (m ShutdownMode) String() string {
	switch m {
	case ShutdownRead:
		return "read"
	case ShutdownWrite:
		return "write"
	default:
		return "both"
	}
}

// Sender is the write half of the contract, consumed by Copy. Every Stream
// is a Sender.
type Sender interface {
	// Send writes all of p to the stream, blocking until the transport has
	// accepted it or failed.
	Send(p []byte) error
}

// Stream is a connected byte-stream endpoint. Exactly one logical caller is
// expected per stream; no internal synchronization is performed.
//
// All operations return an error on transport failure and never panic. A
// peer that has closed the connection is not a failure: Recv reports it as
// (nil, nil) regardless of how the underlying transport signals closure.
type Stream interface {
	Sender

	Kind() Kind

	// Recv reads up to max bytes. max == 0 requests the backend's default
	// unit (4096 bytes for byte streams, one message for framed
	// transports). timeout == 0 blocks until data or failure; otherwise
	// the read is abandoned with a timeout error once it elapses.
	Recv(max int, timeout time.Duration) ([]byte, error)

	// SendFile transfers the contents of the file at path, bounded by
	// opts.Offset and opts.Size. Backends with a native zero-copy
	// primitive may use it; the bytes on the wire are identical either
	// way.
	SendFile(path string, opts Options) error

	// Shutdown half- or fully closes the stream.
	Shutdown(how ShutdownMode) error

	Close() error

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}
