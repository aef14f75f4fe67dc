package protocol

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"minftp/transfer"
)

// Option configures a Session.
type Option func(*Session) error

// WithDialer sets the dialer used for the control and data connections.
func WithDialer(d Dialer) Option {
	return func(s *Session) error {
		if d == nil {
			return fmt.Errorf("nil dialer")
		}
		s.dialer = d
		return nil
	}
}

// WithOutput sets the function that receives every surfaced line.
func WithOutput(fn func(Line)) Option {
	return func(s *Session) error {
		s.output = fn
		return nil
	}
}

// WithLogger sets the logger used for the protocol trace.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Session) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		s.log = logrus.NewEntry(l).WithField("component", "session")
		return nil
	}
}

// WithChunkSize sets the relay buffer size for get and put.
func WithChunkSize(n int) Option {
	return func(s *Session) error {
		if n <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", n)
		}
		s.chunkSize = n
		return nil
	}
}

// WithProgress sets a callback invoked while file data moves.
func WithProgress(fn transfer.ProgressFunc) Option {
	return func(s *Session) error {
		s.progress = fn
		return nil
	}
}
