// Package stream defines the canonical stream-socket contract for sockstream
// and the chunked transfer engine shared by its backends.
//
// Key concepts:
// - Stream: an open, connected, byte-oriented endpoint (plain TCP, TLS, QUIC,
//   WebSocket, libp2p), operated through one transport-agnostic interface
// - Options: offset/size/chunk-size/timeout bounds for transfers and reads
// - Copy: the backend-agnostic chunk loop used directly for arbitrary byte
//   sources and as the file-transfer fallback for transports without a
//   native zero-copy primitive
package stream
