package terminal

import (
	"errors"
	"fmt"
)

// ErrFileBusy is returned when another process holds the lock on a local
// file a download would overwrite.
var ErrFileBusy = errors.New("file is locked by another process")

// UnsupportedCommandError reports a verb the shell does not know. Nothing
// is sent to the server.
type UnsupportedCommandError struct {
	Verb string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("command not supported: %q", e.Verb)
}
