package transfer

import (
	"fmt"
	"io"
)

// DefaultChunkSize is the relay buffer size used when none is configured.
const DefaultChunkSize = 4096

// RelayError tells which side of a relay failed.
type RelayError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay %s: %v", e.Op, e.Err)
}

func (e *RelayError) Unwrap() error { return e.Err }

// Relay copies src to dst chunkSize bytes at a time until src reports
// io.EOF. Every chunk read is written in full; a short write is an error.
// It returns the number of bytes written.
func Relay(src io.Reader, dst io.Writer, chunkSize int) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)

	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, &RelayError{Op: "write", Err: werr}
			}
			if w != n {
				return total, &RelayError{Op: "write", Err: io.ErrShortWrite}
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, &RelayError{Op: "read", Err: rerr}
		}
	}
}
