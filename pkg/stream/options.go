package stream

import (
	"math"
	"time"
)

// Unbounded is the Size sentinel for "transfer until end of source". It is
// unreachable for any real source, so the chunk loop never truncates at it.
const Unbounded int64 = math.MaxInt64

// DefaultChunkSize is the read unit used when Options.ChunkSize is unset.
const DefaultChunkSize = 4096

// Options bounds a transfer or read.
//
// The zero value is valid and means: start at the beginning, send until end
// of source, 4096-byte chunks, no timeout.
type Options struct {
	// Offset is the number of leading source bytes to skip. Must be >= 0.
	Offset int64
	// Size caps the number of bytes sent. 0 means Unbounded. A Size larger
	// than what the source holds degrades to read-until-end.
	Size int64
	// ChunkSize is the per-iteration read size. 0 means DefaultChunkSize.
	ChunkSize int
	// Timeout bounds a single Recv. 0 means no deadline. Send and
	// SendFile rely on the transport's own blocking semantics.
	Timeout time.Duration
}

// withDefaults resolves unset fields to their documented defaults.
func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = Unbounded
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
