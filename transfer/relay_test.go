package transfer

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

// shortWriter accepts at most limit bytes per call without reporting an
// error.
type shortWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.buf.Write(p)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRelayCopiesExactly(t *testing.T) {
	t.Parallel()
	for _, size := range []int{0, 1, 4095, 4096, 4097, 3*4096 + 5} {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(i)
		}
		var dst bytes.Buffer
		n, err := Relay(bytes.NewReader(data), &dst, 0)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if n != int64(size) || !bytes.Equal(dst.Bytes(), data) {
			t.Errorf("size %d: relayed %d bytes, content match %v", size, n, bytes.Equal(dst.Bytes(), data))
		}
	}
}

func TestRelaySmallReads(t *testing.T) {
	t.Parallel()
	data := bytes.Repeat([]byte("abc"), 1000)
	var dst bytes.Buffer
	n, err := Relay(iotest.OneByteReader(bytes.NewReader(data)), &dst, 16)
	if err != nil || n != int64(len(data)) || !bytes.Equal(dst.Bytes(), data) {
		t.Errorf("Relay() = %d, %v", n, err)
	}
}

func TestRelayDataWithEOF(t *testing.T) {
	t.Parallel()
	var dst bytes.Buffer
	n, err := Relay(iotest.DataErrReader(bytes.NewReader([]byte("tail"))), &dst, 3)
	if err != nil || n != 4 || dst.String() != "tail" {
		t.Errorf("Relay() = %d, %v, %q", n, err, dst.String())
	}
}

func TestRelayShortWrite(t *testing.T) {
	t.Parallel()
	w := &shortWriter{limit: 10}
	n, err := Relay(bytes.NewReader(make([]byte, 100)), w, 32)

	var re *RelayError
	if !errors.As(err, &re) || re.Op != "write" {
		t.Fatalf("Relay() error = %v, want write RelayError", err)
	}
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("error = %v, want io.ErrShortWrite", err)
	}
	if n != 10 {
		t.Errorf("n = %d, want 10", n)
	}
}

func TestRelayErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection reset")

	_, err := Relay(iotest.ErrReader(boom), io.Discard, 0)
	var re *RelayError
	if !errors.As(err, &re) || re.Op != "read" || !errors.Is(err, boom) {
		t.Errorf("read failure = %v", err)
	}

	_, err = Relay(bytes.NewReader([]byte("x")), failWriter{}, 0)
	if !errors.As(err, &re) || re.Op != "write" {
		t.Errorf("write failure = %v", err)
	}
}
