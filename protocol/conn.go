package protocol

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
)

// EOL terminates every line on the control connection.
const EOL = "\r\n"

// Dialer opens stream connections. It is satisfied by *net.Dialer and by
// the dialers returned from golang.org/x/net/proxy.
type Dialer interface {
	Dial(network, addr string) (net.Conn, error)
}

// Conn is a line oriented transport over one TCP connection. The control
// channel and every data channel each own a Conn.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	addr   string
	closed bool
}

// Open dials host:port and wraps the connection.
func Open(d Dialer, host string, port int) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	nc, err := d.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnectError{Addr: addr, Err: err}
	}
	return newConn(nc, addr), nil
}

func newConn(nc net.Conn, addr string) *Conn {
	return &Conn{
		conn:   nc,
		reader: bufio.NewReader(nc),
		writer: bufio.NewWriter(nc),
		addr:   addr,
	}
}

// Addr returns the host:port the connection was opened to.
func (c *Conn) Addr() string {
	return c.addr
}

// SendLine writes text followed by EOL and flushes.
func (c *Conn) SendLine(text string) error {
	if _, err := c.writer.WriteString(text + EOL); err != nil {
		return err
	}
	return c.writer.Flush()
}

// ReadLine returns the next line without its terminator. A final line that
// is not terminated is still returned; the call after it reports io.EOF.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Read reads raw bytes. It shares the buffer used by ReadLine so nothing
// already buffered is lost when a caller switches from lines to bytes.
func (c *Conn) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

// Write writes raw bytes and flushes them.
func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.writer.Flush()
}

// Close releases the socket. Only the first call does any work.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return c.closed
}
