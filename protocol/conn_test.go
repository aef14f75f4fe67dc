package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// fakeConn is a net.Conn over an in-memory reader and writer.
type fakeConn struct {
	io.Reader
	out    bytes.Buffer
	closes int
}

func (c *fakeConn) Write(p []byte) (int, error)      { return c.out.Write(p) }
func (c *fakeConn) Close() error                     { c.closes++; return nil }
func (c *fakeConn) LocalAddr() net.Addr              { return nil }
func (c *fakeConn) RemoteAddr() net.Addr             { return nil }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func TestConnReadLine(t *testing.T) {
	t.Parallel()
	fc := &fakeConn{Reader: strings.NewReader("220 Welcome\r\n200 ok\nlast line")}
	c := newConn(fc, "test:21")

	for _, want := range []string{"220 Welcome", "200 ok", "last line"} {
		got, err := c.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine() error = %v", err)
		}
		if got != want {
			t.Errorf("ReadLine() = %q, want %q", got, want)
		}
	}
	if _, err := c.ReadLine(); err != io.EOF {
		t.Errorf("ReadLine() at end error = %v, want io.EOF", err)
	}
}

func TestConnSendLine(t *testing.T) {
	t.Parallel()
	fc := &fakeConn{Reader: strings.NewReader("")}
	c := newConn(fc, "test:21")

	if err := c.SendLine("USER alice"); err != nil {
		t.Fatal(err)
	}
	if err := c.SendLine("PASV"); err != nil {
		t.Fatal(err)
	}
	if got, want := fc.out.String(), "USER alice\r\nPASV\r\n"; got != want {
		t.Errorf("wire = %q, want %q", got, want)
	}
}

func TestConnReadAfterLine(t *testing.T) {
	t.Parallel()
	fc := &fakeConn{Reader: strings.NewReader("header\r\nraw bytes")}
	c := newConn(fc, "test:21")

	if _, err := c.ReadLine(); err != nil {
		t.Fatal(err)
	}
	rest, err := io.ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "raw bytes" {
		t.Errorf("Read after ReadLine = %q", rest)
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	t.Parallel()
	fc := &fakeConn{Reader: strings.NewReader("")}
	c := newConn(fc, "test:21")

	for i := 0; i < 3; i++ {
		if err := c.Close(); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
	}
	if fc.closes != 1 {
		t.Errorf("underlying Close called %d times, want 1", fc.closes)
	}
	if !c.Closed() {
		t.Error("Closed() = false after Close")
	}
}

type refusingDialer struct{}

func (refusingDialer) Dial(network, addr string) (net.Conn, error) {
	return nil, errors.New("connection refused")
}

func TestOpenConnectError(t *testing.T) {
	t.Parallel()
	_, err := Open(refusingDialer{}, "ftp.example.com", 21)
	var ce *ConnectError
	if !errors.As(err, &ce) {
		t.Fatalf("Open() error = %v, want *ConnectError", err)
	}
	if ce.Addr != "ftp.example.com:21" {
		t.Errorf("Addr = %q", ce.Addr)
	}
}

func TestConnWriteFlushes(t *testing.T) {
	t.Parallel()
	var sink bytes.Buffer
	fc := &fakeConn{Reader: strings.NewReader("")}
	c := newConn(fc, "test:21")
	c.writer = bufio.NewWriterSize(&sink, 16)

	if _, err := c.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if sink.String() != "abc" {
		t.Errorf("Write left %q unflushed", "abc")
	}
}
