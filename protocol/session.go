package protocol

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"minftp/transfer"
)

// DefaultPort is the standard FTP control port.
const DefaultPort = 21

// State is the position of a Session in its lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateGreeted
	StateAuthenticating
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateGreeted:
		return "greeted"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LineKind tells where a surfaced line came from.
type LineKind int

const (
	// KindReply is a line read from the control connection.
	KindReply LineKind = iota
	// KindListing is a directory entry read from a data connection.
	KindListing
)

// Line is one line surfaced to the user.
type Line struct {
	Kind LineKind
	Text string
}

// Credentials supplies the user name and password for each login attempt.
type Credentials interface {
	Username() (string, error)
	Password() (string, error)
}

// Session drives one FTP control connection. It is not safe for
// concurrent use; operations run one at a time to completion.
//
// No read or write deadline is ever set: a server that stops answering
// stalls the session until the process closes the connection.
type Session struct {
	host      string
	port      int
	dialer    Dialer
	output    func(Line)
	log       *logrus.Entry
	chunkSize int
	progress  transfer.ProgressFunc

	ctrl     *Conn
	data     *Conn
	state    State
	username string
}

// NewSession returns a disconnected session for host:port.
func NewSession(host string, port int, opts ...Option) (*Session, error) {
	if port <= 0 {
		port = DefaultPort
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	s := &Session{
		host:      host,
		port:      port,
		dialer:    &net.Dialer{},
		output:    func(Line) {},
		log:       logrus.NewEntry(quiet),
		chunkSize: transfer.DefaultChunkSize,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.log = s.log.WithField("host", host)
	return s, nil
}

// Host returns the server host name.
func (s *Session) Host() string { return s.host }

// Username returns the name accepted at login.
func (s *Session) Username() string { return s.username }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Connect opens the control connection, reads the greeting and switches
// the server to UTF-8 names.
func (s *Session) Connect() error {
	if s.state != StateDisconnected {
		return fmt.Errorf("connect: session is %s", s.state)
	}
	ctrl, err := Open(s.dialer, s.host, s.port)
	if err != nil {
		return err
	}
	s.ctrl = ctrl
	s.log.Debug("control connection open")

	if _, err := s.readReply("greeting", true); err != nil {
		return err
	}
	if _, err := s.request(Cmd(VerbOPTS, "UTF8 ON")); err != nil {
		return err
	}
	s.state = StateGreeted
	return nil
}

// Login asks creds for a user name and password until the server stops
// answering 530. A rejected password starts over from the user name.
// Login returns early when ctx is cancelled or creds returns an error.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if s.state != StateGreeted && s.state != StateAuthenticating {
		return fmt.Errorf("login: session is %s", s.state)
	}
	s.state = StateAuthenticating

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		user, err := creds.Username()
		if err != nil {
			return fmt.Errorf("read user name: %w", err)
		}
		if _, err := s.exchange(Cmd(VerbUSER, user)); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		pass, err := creds.Password()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		reply, err := s.request(Cmd(VerbPASS, pass))
		if err != nil {
			return err
		}

		if IsAuthFailure(reply) {
			s.log.WithError(ErrAuthRejected).WithField("user", user).Debug("login rejected")
			continue
		}
		s.username = user
		s.state = StateReady
		return nil
	}
}

// List writes the listing of path (the working directory when empty) to
// the output: the reply announcing the transfer, one line per entry, then
// the completion reply.
func (s *Session) List(path string) error {
	if err := s.ready(); err != nil {
		return err
	}
	data, err := s.openData()
	if err != nil {
		return err
	}
	defer s.closeData()

	cmd := Cmd(VerbLIST, path)
	reply, err := s.request(cmd)
	if err != nil {
		return err
	}
	if !isPreliminary(reply) {
		return replyError(cmd, reply)
	}

	for {
		entry, err := data.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.abort(cmd, "list", err)
		}
		s.output(Line{Kind: KindListing, Text: entry})
	}

	return s.finish(cmd)
}

// ChangeDir sends CWD.
func (s *Session) ChangeDir(path string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.simple(Cmd(VerbCWD, path))
}

// Delete sends DELE.
func (s *Session) Delete(path string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.simple(Cmd(VerbDELE, path))
}

// Retrieve downloads path into sink and closes sink. The completion reply
// is read before the data connection is closed.
func (s *Session) Retrieve(path string, sink io.WriteCloser) (n int64, err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = &TransferError{Op: "get", Err: cerr}
		}
	}()
	if err := s.ready(); err != nil {
		return 0, err
	}
	data, err := s.openData()
	if err != nil {
		return 0, err
	}
	defer s.closeData()

	cmd := Cmd(VerbRETR, path)
	reply, err := s.request(cmd)
	if err != nil {
		return 0, err
	}
	if !isPreliminary(reply) {
		return 0, replyError(cmd, reply)
	}

	var src io.Reader = data
	if s.progress != nil {
		src = transfer.NewProgressReader(data, 0, s.progress)
	}
	n, err = transfer.Relay(src, sink, s.chunkSize)
	if err != nil {
		return n, s.abort(cmd, "get", err)
	}
	return n, s.finish(cmd)
}

// Store uploads src as path and closes src. The data connection is closed
// before the completion reply is read, since servers only send it once
// they see the end of the upload.
func (s *Session) Store(path string, src io.ReadCloser) (n int64, err error) {
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = &TransferError{Op: "put", Err: cerr}
		}
	}()
	if err := s.ready(); err != nil {
		return 0, err
	}
	data, err := s.openData()
	if err != nil {
		return 0, err
	}
	defer s.closeData()

	cmd := Cmd(VerbSTOR, path)
	reply, err := s.request(cmd)
	if err != nil {
		return 0, err
	}
	if !isPreliminary(reply) {
		return 0, replyError(cmd, reply)
	}

	var in io.Reader = src
	if s.progress != nil {
		in = transfer.NewProgressReader(src, sizeOf(src), s.progress)
	}
	n, err = transfer.Relay(in, data, s.chunkSize)
	if err != nil {
		return n, s.abort(cmd, "put", err)
	}
	if err := s.closeData(); err != nil {
		return n, &TransferError{Op: "put", Err: err}
	}
	return n, s.finish(cmd)
}

// Help sends HELP and surfaces lines until the second line carrying the
// 214 code, which closes the help text.
func (s *Session) Help() error {
	if err := s.ready(); err != nil {
		return err
	}
	cmd := Cmd(VerbHELP)
	if err := s.send(cmd); err != nil {
		return err
	}

	seen := 0
	for first := true; seen < 2; first = false {
		line, err := s.readLine("HELP")
		if err != nil {
			return err
		}
		s.output(Line{Kind: KindReply, Text: line})
		if len(line) >= 3 && line[:3] == codeHelp {
			seen++
		}
		// A one line reply other than 214, such as 502, has no closing
		// line to wait for.
		if first && seen == 0 && !continues(line) {
			break
		}
	}
	return nil
}

// CurrentPath asks the server for the working directory. The reply is
// not surfaced.
func (s *Session) CurrentPath() (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	reply, err := s.exchange(Cmd(VerbPWD))
	if err != nil {
		return "", err
	}
	return QuotedPath(reply)
}

// Disconnect closes the data and control connections. It is safe to call
// more than once.
func (s *Session) Disconnect() error {
	if s.state == StateClosed {
		return nil
	}
	var result *multierror.Error
	if err := s.closeData(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.ctrl != nil {
		if err := s.ctrl.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	s.state = StateClosed
	s.log.Debug("session closed")
	return result.ErrorOrNil()
}

func (s *Session) ready() error {
	if s.state != StateReady {
		return ErrNotReady
	}
	return nil
}

// simple sends a command answered by a single reply.
func (s *Session) simple(cmd Command) error {
	reply, err := s.request(cmd)
	if err != nil {
		return err
	}
	if isNegative(reply) {
		return replyError(cmd, reply)
	}
	return nil
}

// finish reads the completion reply of a transfer.
func (s *Session) finish(cmd Command) error {
	reply, err := s.readReply(cmd.Verb.String(), true)
	if err != nil {
		return err
	}
	if isNegative(reply) {
		return replyError(cmd, reply)
	}
	return nil
}

// abort closes the data connection after a failed transfer and reads the
// completion reply so the control stream stays in step.
func (s *Session) abort(cmd Command, op string, err error) error {
	_ = s.closeData()
	if _, rerr := s.readReply(cmd.Verb.String(), true); rerr != nil {
		return rerr
	}
	return &TransferError{Op: op, Err: err}
}

// request sends cmd and surfaces the reply.
func (s *Session) request(cmd Command) (string, error) {
	if err := s.send(cmd); err != nil {
		return "", err
	}
	return s.readReply(cmd.Verb.String(), true)
}

// exchange sends cmd and reads the reply without surfacing it.
func (s *Session) exchange(cmd Command) (string, error) {
	if err := s.send(cmd); err != nil {
		return "", err
	}
	return s.readReply(cmd.Verb.String(), false)
}

func (s *Session) send(cmd Command) error {
	s.log.WithField("cmd", cmd.String()).Debug("send")
	if err := s.ctrl.SendLine(cmd.Line()); err != nil {
		return s.fail(cmd.Verb.String(), err)
	}
	return nil
}

// readReply reads one reply, following "NNN-" continuation lines to the
// closing "NNN " line, and returns its first line.
func (s *Session) readReply(op string, surface bool) (string, error) {
	first, err := s.readLine(op)
	if err != nil {
		return "", err
	}
	s.emitReply(first, surface)
	if continues(first) {
		code := first[:3]
		for {
			line, err := s.readLine(op)
			if err != nil {
				return "", err
			}
			s.emitReply(line, surface)
			if ends(line, code) {
				break
			}
		}
	}
	return first, nil
}

func (s *Session) emitReply(line string, surface bool) {
	if surface {
		s.output(Line{Kind: KindReply, Text: line})
	}
}

func (s *Session) readLine(op string) (string, error) {
	line, err := s.ctrl.ReadLine()
	if err != nil {
		return "", s.fail(op, err)
	}
	s.log.WithField("reply", line).Debug("recv")
	return line, nil
}

// fail closes the session after a control connection error.
func (s *Session) fail(op string, err error) error {
	s.log.WithError(err).WithField("op", op).Warn("control connection failed")
	_ = s.Disconnect()
	return &ControlError{Op: op, Err: err}
}

func replyError(cmd Command, line string) error {
	code, _ := ReplyCode(line)
	return &ReplyError{Command: cmd.Verb.String(), Line: line, Code: code}
}

func sizeOf(r io.Reader) int64 {
	if f, ok := r.(interface{ Stat() (os.FileInfo, error) }); ok {
		if fi, err := f.Stat(); err == nil {
			return fi.Size()
		}
	}
	return 0
}
