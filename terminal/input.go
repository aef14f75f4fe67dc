package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/c-bata/go-prompt"
	"golang.org/x/term"
)

// LineReader supplies lines typed by the user.
type LineReader interface {
	// ReadLine shows prefix and returns the next line without its
	// terminator. It returns io.EOF when input ends.
	ReadLine(prefix string) (string, error)
	// ReadPassword is ReadLine without echo where the input allows it.
	ReadPassword(prefix string) (string, error)
}

// NewLineReader returns an interactive editor with completion when in is
// a terminal and a plain line reader otherwise. onInterrupt runs when the
// user presses Ctrl+C at the interactive prompt, where the terminal does
// not raise SIGINT.
func NewLineReader(in *os.File, out io.Writer, completer *CommandCompleter, onInterrupt func()) LineReader {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		return &promptReader{
			fd:          fd,
			out:         out,
			completer:   completer,
			onInterrupt: onInterrupt,
		}
	}
	return NewPlainReader(in, out)
}

// promptReader edits lines with go-prompt.
type promptReader struct {
	fd          int
	out         io.Writer
	completer   *CommandCompleter
	onInterrupt func()
	history     []string
}

func (r *promptReader) ReadLine(prefix string) (string, error) {
	complete := func(prompt.Document) []prompt.Suggest { return nil }
	if r.completer != nil {
		complete = r.completer.Completer
	}

	line := prompt.Input(prefix, complete,
		prompt.OptionHistory(r.history),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionCompletionWordSeparator(" "),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(*prompt.Buffer) {
				if r.onInterrupt != nil {
					r.onInterrupt()
				}
			},
		}),
	)
	if strings.TrimSpace(line) != "" {
		r.history = append(r.history, line)
	}
	return line, nil
}

func (r *promptReader) ReadPassword(prefix string) (string, error) {
	fmt.Fprint(r.out, prefix)
	pass, err := term.ReadPassword(r.fd)
	fmt.Fprintln(r.out)
	if err != nil {
		return "", err
	}
	return string(pass), nil
}

// PlainReader reads lines from any reader, such as a pipe or a file.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader returns a PlainReader that prints prefixes to out.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

func (r *PlainReader) ReadLine(prefix string) (string, error) {
	if prefix != "" {
		fmt.Fprint(r.out, prefix)
	}
	line, err := r.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword echoes like ReadLine; there is no terminal to silence.
func (r *PlainReader) ReadPassword(prefix string) (string, error) {
	return r.ReadLine(prefix)
}

// Credentials asks the user for a name and password on each login attempt.
type Credentials struct {
	Input   LineReader
	Console *Console
}

func (c Credentials) Username() (string, error) {
	c.Console.Prompt("Enter your user:")
	return c.Input.ReadLine("")
}

func (c Credentials) Password() (string, error) {
	c.Console.Prompt("Enter your password:")
	return c.Input.ReadPassword("")
}
