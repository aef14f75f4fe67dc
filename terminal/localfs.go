package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"minftp/transfer"
)

// LocalFS opens the local side of a transfer.
type LocalFS interface {
	// Create opens name for writing, truncating it.
	Create(name string) (io.WriteCloser, error)
	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

// OSFiles is LocalFS on the process working directory.
type OSFiles struct{}

// Create takes an exclusive advisory lock before truncating, so two
// clients downloading into the same file do not interleave their writes.
func (OSFiles) Create(name string) (io.WriteCloser, error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	if !transfer.TryExclusiveLock(f) {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrFileBusy)
	}
	if err := f.Truncate(0); err != nil {
		transfer.UnlockFile(f)
		f.Close()
		return nil, err
	}
	return &lockedFile{File: f}, nil
}

func (OSFiles) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (OSFiles) Remove(name string) error {
	return os.Remove(name)
}

// lockedFile releases its lock on Close.
type lockedFile struct {
	*os.File
}

func (f *lockedFile) Close() error {
	var result *multierror.Error
	if err := f.File.Sync(); err != nil {
		result = multierror.Append(result, err)
	}
	transfer.UnlockFile(f.File)
	if err := f.File.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
