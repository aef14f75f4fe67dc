// Package ftptest runs a small in-memory FTP server on the loopback
// interface for exercising the client against a real socket pair.
package ftptest

import (
	"errors"
	"fmt"
	"net"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// ModTime is the modification time reported for every entry.
var ModTime = time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC)

// DefaultHelp is sent in reply to HELP unless WithHelp replaces it.
var DefaultHelp = []string{
	"214-The following commands are recognized.",
	" CWD  DELE HELP LIST NLST NOOP OPTS PASS",
	" PASV PWD  QUIT RETR STOR USER",
	"214 Help OK.",
}

// Server is an FTP server holding its files in memory.
type Server struct {
	listener net.Listener
	users    *UserStore
	greeting string
	help     []string

	mu       sync.Mutex
	files    map[string][]byte
	dirs     map[string]bool
	commands []string
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server) error

// WithUser adds an account.
func WithUser(name, password string) Option {
	return func(s *Server) error {
		return s.users.AddUser(name, password)
	}
}

// WithFile stores a file, creating its parent directories.
func WithFile(p string, data []byte) Option {
	return func(s *Server) error {
		p = path.Clean("/" + p)
		s.files[p] = append([]byte(nil), data...)
		s.addDirs(path.Dir(p))
		return nil
	}
}

// WithDir creates a directory and its parents.
func WithDir(p string) Option {
	return func(s *Server) error {
		s.addDirs(path.Clean("/" + p))
		return nil
	}
}

// WithHelp replaces the HELP reply. Lines are sent as given.
func WithHelp(lines ...string) Option {
	return func(s *Server) error {
		s.help = lines
		return nil
	}
}

// WithGreeting replaces the text of the 220 greeting.
func WithGreeting(text string) Option {
	return func(s *Server) error {
		s.greeting = text
		return nil
	}
}

// NewServer listens on 127.0.0.1 with a random port and starts serving.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		users:    NewUserStore(),
		greeting: "(ftptest) ready",
		help:     DefaultHelp,
		files:    make(map[string][]byte),
		dirs:     map[string]bool{"/": true},
		conns:    make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen: %v", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Start is NewServer for tests; the server is closed at cleanup.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s, err := NewServer(opts...)
	if err != nil {
		t.Fatalf("ftptest: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Host returns the listening address without the port.
func (s *Server) Host() string {
	return s.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the control port.
func (s *Server) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

// Commands returns every command line received so far, in order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// File returns the content stored at p.
func (s *Server) File(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path.Clean("/"+p)]
	return data, ok
}

// Close stops accepting, drops every connection and waits for the
// handlers to return.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			newSession(s, conn).serve()

			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		}()
	}
}

func (s *Server) record(line string) {
	s.mu.Lock()
	s.commands = append(s.commands, line)
	s.mu.Unlock()
}

// addDirs marks p and every parent as a directory. Callers hold s.mu or
// run before serving starts.
func (s *Server) addDirs(p string) {
	for {
		s.dirs[p] = true
		if p == "/" {
			return
		}
		p = path.Dir(p)
	}
}

func (s *Server) isDir(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirs[p]
}

func (s *Server) readFile(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[p]
	return data, ok
}

func (s *Server) writeFile(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[p] = data
}

func (s *Server) removeFile(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[p]; !ok {
		return false
	}
	delete(s.files, p)
	return true
}

// listing renders the entries of dir in "ls -l" form, sorted by name.
func (s *Server) listing(dir string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		name  string
		size  int
		isDir bool
	}
	var entries []entry
	prefix := strings.TrimSuffix(dir, "/") + "/"
	for p := range s.dirs {
		if p != dir && path.Dir(p) == dir {
			entries = append(entries, entry{name: strings.TrimPrefix(p, prefix), isDir: true})
		}
	}
	for p, data := range s.files {
		if path.Dir(p) == dir {
			entries = append(entries, entry{name: strings.TrimPrefix(p, prefix), size: len(data)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		perms := "-rw-r--r--"
		if e.isDir {
			perms = "drwxr-xr-x"
		}
		lines = append(lines, fmt.Sprintf("%s %3d %-8s %-8s %8d %s %s",
			perms, 1, "owner", "group", e.size, ModTime.Format("Jan 02 15:04"), e.name))
	}
	return lines
}
