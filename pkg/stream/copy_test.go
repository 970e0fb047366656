package stream

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// recorder captures every Send call for chunk-pattern assertions.
type recorder struct {
	chunks []int
	data   bytes.Buffer
	failAt int // fail the nth Send (1-based); 0 = never
}

func (r *recorder) Send(p []byte) error {
	if r.failAt > 0 && len(r.chunks)+1 == r.failAt {
		return errors.New("send failed")
	}
	r.chunks = append(r.chunks, len(p))
	r.data.Write(p)
	return nil
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func TestCopyOffsetAndSize(t *testing.T) {
	src := pattern(10000)
	rec := &recorder{}

	err := Copy(rec, bytes.NewReader(src), Options{Offset: 100, Size: 500, ChunkSize: 256})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if want := []int{256, 244}; !equalInts(rec.chunks, want) {
		t.Fatalf("chunk pattern mismatch: got %v, want %v", rec.chunks, want)
	}
	if !bytes.Equal(rec.data.Bytes(), src[100:600]) {
		t.Fatalf("sent bytes do not match source[100:600]")
	}
}

func TestCopyUnbounded(t *testing.T) {
	src := pattern(10000)
	rec := &recorder{}

	err := Copy(rec, bytes.NewReader(src), Options{ChunkSize: 4096})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if want := []int{4096, 4096, 1808}; !equalInts(rec.chunks, want) {
		t.Fatalf("chunk pattern mismatch: got %v, want %v", rec.chunks, want)
	}
	if !bytes.Equal(rec.data.Bytes(), src) {
		t.Fatalf("sent bytes do not match source")
	}
}

func TestCopyOffsetPastEnd(t *testing.T) {
	rec := &recorder{}
	err := Copy(rec, bytes.NewReader(pattern(10)), Options{Offset: 20})
	if err != nil {
		t.Fatalf("expected success for offset past end, got %v", err)
	}
	if len(rec.chunks) != 0 {
		t.Fatalf("expected zero Send calls, got %d", len(rec.chunks))
	}
}

func TestCopyOffsetAtExactEnd(t *testing.T) {
	rec := &recorder{}
	err := Copy(rec, bytes.NewReader(pattern(10)), Options{Offset: 10})
	if err != nil {
		t.Fatalf("expected success for offset at end, got %v", err)
	}
	if len(rec.chunks) != 0 {
		t.Fatalf("expected zero Send calls, got %d", len(rec.chunks))
	}
}

func TestCopySizeBeyondSource(t *testing.T) {
	src := pattern(1000)
	rec := &recorder{}

	err := Copy(rec, bytes.NewReader(src), Options{Size: 5000, ChunkSize: 300})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if rec.data.Len() != 1000 {
		t.Fatalf("expected 1000 bytes sent, got %d", rec.data.Len())
	}
	if want := []int{300, 300, 300, 100}; !equalInts(rec.chunks, want) {
		t.Fatalf("chunk pattern mismatch: got %v, want %v", rec.chunks, want)
	}
}

func TestCopySizeMultipleOfChunk(t *testing.T) {
	src := pattern(2000)
	rec := &recorder{}

	err := Copy(rec, bytes.NewReader(src), Options{Size: 1024, ChunkSize: 256})
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if want := []int{256, 256, 256, 256}; !equalInts(rec.chunks, want) {
		t.Fatalf("chunk pattern mismatch: got %v, want %v", rec.chunks, want)
	}
}

func TestCopySendErrorAborts(t *testing.T) {
	rec := &recorder{failAt: 2}
	err := Copy(rec, bytes.NewReader(pattern(1000)), Options{ChunkSize: 100})
	if err == nil || err.Error() != "send failed" {
		t.Fatalf("expected send failure to propagate, got %v", err)
	}
	if len(rec.chunks) != 1 {
		t.Fatalf("expected transfer to stop after first chunk, got %d chunks", len(rec.chunks))
	}
}

type failingReader struct {
	n   int // bytes to serve before failing
	err error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		return 0, r.err
	}
	n := len(p)
	if n > r.n {
		n = r.n
	}
	r.n -= n
	return n, nil
}

func TestCopyReadErrorAborts(t *testing.T) {
	readErr := errors.New("disk gone")
	rec := &recorder{}
	err := Copy(rec, &failingReader{n: 150, err: readErr}, Options{ChunkSize: 100})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error to propagate, got %v", err)
	}
	if rec.data.Len() != 150 {
		t.Fatalf("expected the 150 readable bytes to be sent, got %d", rec.data.Len())
	}
}

func TestCopyDiscardErrorAborts(t *testing.T) {
	readErr := errors.New("disk gone")
	rec := &recorder{}
	err := Copy(rec, &failingReader{n: 10, err: readErr}, Options{Offset: 50})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected discard error to propagate, got %v", err)
	}
	if len(rec.chunks) != 0 {
		t.Fatalf("expected zero Send calls, got %d", len(rec.chunks))
	}
}

func TestCopyFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload")
	src := pattern(9000)
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	rec := &recorder{}
	if err := CopyFile(rec, path, Options{}); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	if want := []int{4096, 4096, 808}; !equalInts(rec.chunks, want) {
		t.Fatalf("chunk pattern mismatch: got %v, want %v", rec.chunks, want)
	}
	if !bytes.Equal(rec.data.Bytes(), src) {
		t.Fatalf("sent bytes do not match file contents")
	}
}

func TestCopyFileMissing(t *testing.T) {
	rec := &recorder{}
	err := CopyFile(rec, filepath.Join(t.TempDir(), "absent"), Options{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Size != Unbounded {
		t.Fatalf("zero Size should resolve to Unbounded, got %d", o.Size)
	}
	if o.ChunkSize != DefaultChunkSize {
		t.Fatalf("zero ChunkSize should resolve to %d, got %d", DefaultChunkSize, o.ChunkSize)
	}
	if o.Offset != 0 || o.Timeout != 0 {
		t.Fatalf("unexpected defaults: %+v", o)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ io.Reader = (*failingReader)(nil)
