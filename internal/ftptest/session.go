package ftptest

import (
	"bufio"
	"fmt"
	"net"
	"path"
	"strings"
	"time"
)

// dataAcceptTimeout bounds how long a transfer waits for the client to
// connect to the passive port.
const dataAcceptTimeout = 5 * time.Second

type session struct {
	server *Server
	conn   net.Conn
	reader *bufio.Reader

	cwd           string
	user          string
	authenticated bool
	pasv          *net.TCPListener
}

func newSession(s *Server, conn net.Conn) *session {
	return &session{
		server: s,
		conn:   conn,
		reader: bufio.NewReader(conn),
		cwd:    "/",
	}
}

func (s *session) serve() {
	defer s.conn.Close()
	defer s.closePassive()

	s.SendResponse(220, s.server.greeting)
	handler := newCommandHandler(s)
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		s.server.record(line)
		if handler.HandleCommand(line) {
			return
		}
	}
}

// SendResponse writes a single line reply.
func (s *session) SendResponse(code int, message string) {
	fmt.Fprintf(s.conn, "%d %s\r\n", code, message)
}

// SendLines writes preformatted reply lines.
func (s *session) SendLines(lines ...string) {
	for _, l := range lines {
		fmt.Fprintf(s.conn, "%s\r\n", l)
	}
}

// ResolvePath makes p absolute against the working directory.
func (s *session) ResolvePath(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(s.cwd, p)
}

// listenPassive replaces any previous passive listener.
func (s *session) listenPassive() (*net.TCPAddr, error) {
	s.closePassive()
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}
	s.pasv = ln
	return ln.Addr().(*net.TCPAddr), nil
}

// OpenDataConnection accepts the client's data connection. The passive
// listener is single use.
func (s *session) OpenDataConnection() (net.Conn, error) {
	if s.pasv == nil {
		return nil, fmt.Errorf("no passive listener")
	}
	defer s.closePassive()
	if err := s.pasv.SetDeadline(time.Now().Add(dataAcceptTimeout)); err != nil {
		return nil, err
	}
	return s.pasv.Accept()
}

func (s *session) closePassive() {
	if s.pasv != nil {
		_ = s.pasv.Close()
		s.pasv = nil
	}
}
