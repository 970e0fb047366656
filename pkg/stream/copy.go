package stream

import (
	"fmt"
	"io"
	"os"
)

// Copy moves bytes from src to dst in bounded chunks per opts. It is the
// file-transfer path for every backend without a kernel zero-copy primitive,
// and is usable directly for any readable source.
//
// Running out of source early is success: an offset past the end of src
// sends nothing and returns nil, and a Size larger than the source stops at
// end-of-source. Source read errors and send errors abort the transfer and
// are returned unchanged; bytes already sent stay sent.
func Copy(dst Sender, src io.Reader, opts Options) error {
	opts = opts.withDefaults()

	if opts.Offset > 0 {
		if _, err := io.CopyN(io.Discard, src, opts.Offset); err != nil {
			if err == io.EOF {
				// Source shorter than the offset: empty transfer.
				return nil
			}
			return fmt.Errorf("discard offset: %w", err)
		}
	}

	buf := make([]byte, opts.ChunkSize)
	var total int64
	for total < opts.Size {
		want := int64(opts.ChunkSize)
		if total+want > opts.Size {
			// Final short chunk: exactly the remaining budget.
			want = opts.Size - total
		}
		n, err := io.ReadFull(src, buf[:want])
		if n > 0 {
			if serr := dst.Send(buf[:n]); serr != nil {
				return serr
			}
			total += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// CopyFile opens the file at path and streams it through Copy. The file is
// read sequentially for the duration of the call and closed before return.
func CopyFile(dst Sender, path string, opts Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Copy(dst, f, opts)
}
