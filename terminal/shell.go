package terminal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"minftp/protocol"
)

// Session is what the shell needs from a logged in session.
type Session interface {
	Operations
	CurrentPath() (string, error)
	Username() string
	Host() string
}

// Shell reads commands until quit, end of input or a lost connection.
type Shell struct {
	session    Session
	dispatcher *Dispatcher
	input      LineReader
	console    *Console
}

// NewShell returns a shell running commands through dispatcher.
func NewShell(session Session, dispatcher *Dispatcher, input LineReader, console *Console) *Shell {
	return &Shell{
		session:    session,
		dispatcher: dispatcher,
		input:      input,
		console:    console,
	}
}

// Run returns nil on quit or end of input, and the error that closed the
// session otherwise.
func (sh *Shell) Run() error {
	for {
		prefix, err := sh.prompt()
		if err != nil {
			return err
		}

		line, err := sh.input.ReadLine(prefix)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		quit, err := sh.dispatcher.Dispatch(line)
		sh.console.Flush()
		if err != nil {
			if protocol.IsFatal(err) {
				return err
			}
			sh.report(err)
		}
		if quit {
			return nil
		}
	}
}

// prompt builds "user@host:path> ". A path the server will not report is
// shown as "?".
func (sh *Shell) prompt() (string, error) {
	path, err := sh.session.CurrentPath()
	if err != nil {
		if protocol.IsFatal(err) {
			return "", err
		}
		sh.report(err)
		path = "?"
	}
	return fmt.Sprintf("%s@%s:%s> ", sh.session.Username(), sh.session.Host(), path), nil
}

// report prints err unless the user has already seen it: the reply behind
// a ReplyError was printed when it arrived, and unknown verbs print their
// own notice.
func (sh *Shell) report(err error) {
	var re *protocol.ReplyError
	var ue *UnsupportedCommandError
	if errors.As(err, &re) || errors.As(err, &ue) {
		return
	}
	sh.console.Error(err)
}
