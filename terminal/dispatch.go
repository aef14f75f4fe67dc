package terminal

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"minftp/perfmetrics"
	"minftp/protocol"
)

// Op is a shell command.
type Op int

const (
	OpUnknown Op = iota
	OpList
	OpGet
	OpPut
	OpChangeDir
	OpHelp
	OpDelete
	OpQuit
)

var opsByVerb = map[string]Op{
	"ls":     OpList,
	"get":    OpGet,
	"put":    OpPut,
	"cd":     OpChangeDir,
	"help":   OpHelp,
	"delete": OpDelete,
	"quit":   OpQuit,
}

func (o Op) String() string {
	for verb, op := range opsByVerb {
		if op == o {
			return verb
		}
	}
	return "unknown"
}

// ParseCommand splits line on its first space. The verb is matched
// without regard to case; the rest of the line is the argument, verbatim.
func ParseCommand(line string) (Op, string) {
	verb, arg, _ := strings.Cut(line, " ")
	if op, ok := opsByVerb[strings.ToLower(verb)]; ok {
		return op, arg
	}
	return OpUnknown, arg
}

// Operations is what the dispatcher drives. *protocol.Session implements it.
type Operations interface {
	List(path string) error
	ChangeDir(path string) error
	Retrieve(path string, sink io.WriteCloser) (int64, error)
	Store(path string, src io.ReadCloser) (int64, error)
	Help() error
	Delete(path string) error
}

// Dispatcher turns command lines into session operations.
type Dispatcher struct {
	ops       Operations
	console   *Console
	files     LocalFS
	completer *CommandCompleter
	log       *logrus.Entry

	host        string
	transferLog string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLocalFS replaces the local file access used by get and put.
func WithLocalFS(fs LocalFS) DispatcherOption {
	return func(d *Dispatcher) { d.files = fs }
}

// WithTransferLog appends a CSV record for every get and put.
func WithTransferLog(path, host string) DispatcherOption {
	return func(d *Dispatcher) {
		d.transferLog = path
		d.host = host
	}
}

// WithCompletion drops cached remote names whenever the directory changes.
func WithCompletion(c *CommandCompleter) DispatcherOption {
	return func(d *Dispatcher) { d.completer = c }
}

// WithDispatchLogger sets the logger used for transfer log failures.
func WithDispatchLogger(l *logrus.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = logrus.NewEntry(l).WithField("component", "dispatch") }
}

// NewDispatcher returns a dispatcher over ops that prints notices to console.
func NewDispatcher(ops Operations, console *Console, opts ...DispatcherOption) *Dispatcher {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	d := &Dispatcher{
		ops:     ops,
		console: console,
		files:   OSFiles{},
		log:     logrus.NewEntry(quiet),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the command on line. It reports quit for the quit verb;
// disconnecting is left to the caller.
func (d *Dispatcher) Dispatch(line string) (quit bool, err error) {
	op, arg := ParseCommand(line)
	switch op {
	case OpList:
		return false, d.ops.List(arg)
	case OpChangeDir:
		err := d.ops.ChangeDir(arg)
		if err == nil && d.completer != nil {
			d.completer.ClearCache()
		}
		return false, err
	case OpGet:
		return false, d.get(arg)
	case OpPut:
		return false, d.put(arg)
	case OpHelp:
		return false, d.ops.Help()
	case OpDelete:
		return false, d.ops.Delete(arg)
	case OpQuit:
		return true, nil
	default:
		verb, _, _ := strings.Cut(line, " ")
		d.console.Notice("Command not supported")
		return false, &UnsupportedCommandError{Verb: verb}
	}
}

func (d *Dispatcher) get(path string) error {
	sink, err := d.files.Create(path)
	if err != nil {
		return &protocol.TransferError{Op: "get", Err: err}
	}
	start := time.Now()
	n, err := d.ops.Retrieve(path, sink)

	// A refused download leaves nothing worth keeping.
	var re *protocol.ReplyError
	if errors.As(err, &re) && n == 0 {
		if rerr := d.files.Remove(path); rerr != nil {
			d.log.WithError(rerr).WithField("file", path).Warn("could not remove empty download")
		}
	}
	d.record("get", path, n, time.Since(start), err)
	return err
}

func (d *Dispatcher) put(path string) error {
	src, err := d.files.Open(path)
	if err != nil {
		return &protocol.TransferError{Op: "put", Err: err}
	}
	start := time.Now()
	n, err := d.ops.Store(path, src)
	d.record("put", path, n, time.Since(start), err)
	return err
}

func (d *Dispatcher) record(op, path string, n int64, elapsed time.Duration, err error) {
	if d.transferLog == "" {
		return
	}
	rec := perfmetrics.TransferRecord{
		Host:      d.host,
		Operation: op,
		FileName:  path,
		Bytes:     n,
		Duration:  elapsed,
		Err:       err,
	}
	if lerr := perfmetrics.LogTransfer(d.transferLog, rec); lerr != nil {
		d.log.WithError(lerr).Warn("transfer log not written")
	}
}
