package protocol

import (
	"errors"
	"fmt"
)

// ErrAuthRejected is logged each time the server answers PASS with 530.
// Login does not return it; the credentials are asked for again.
var ErrAuthRejected = errors.New("authentication rejected")

// ErrNotReady is returned by operations called before a successful login
// or after the session was closed.
var ErrNotReady = errors.New("session is not logged in")

// ConnectError reports a failed dial to the control or a data endpoint.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ParseError reports a reply that could not be decoded, such as a PASV
// reply without six numbers or a PWD reply without a quoted path.
type ParseError struct {
	What string
	Line string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s reply: %q", e.What, e.Line)
}

// TransferError reports a failure on a data connection or on the local
// sink or source. The control connection is still usable.
type TransferError struct {
	Op  string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%s transfer failed: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ControlError reports an I/O failure on the control connection. The
// session is closed when one is returned.
type ControlError struct {
	Op  string
	Err error
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("control connection lost during %s: %v", e.Op, e.Err)
}

func (e *ControlError) Unwrap() error { return e.Err }

// ReplyError carries a reply that did not report success. The line has
// already been surfaced to the session output.
type ReplyError struct {
	Command string
	Line    string
	Code    int
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Command, e.Line)
}

// IsFatal reports whether err ended the session.
func IsFatal(err error) bool {
	var ce *ControlError
	return errors.As(err, &ce)
}
