package terminal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"minftp/protocol"
	"minftp/transfer"
)

// Console prints session output in the theme's colors. Errors go to a
// separate stream.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	theme  *ThemeManager

	table     *TableFormatter
	completer *CommandCompleter

	// entries parsed from the listing in progress
	entries  []*ftp.Entry
	listing  bool
	progress bool
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithTableListing renders each listing as a table once it is complete.
func WithTableListing() ConsoleOption {
	return func(c *Console) { c.table = NewTableFormatter(c.out) }
}

// WithCompleter feeds every listing to the completer's remote name cache.
func WithCompleter(cc *CommandCompleter) ConsoleOption {
	return func(c *Console) { c.completer = cc }
}

// NewConsole returns a console writing to out and errOut.
func NewConsole(out, errOut io.Writer, theme *ThemeManager, opts ...ConsoleOption) *Console {
	c := &Console{out: out, errOut: errOut, theme: theme}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Emit prints one line surfaced by the session. It has the signature
// protocol.WithOutput expects.
func (c *Console) Emit(l protocol.Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgress()

	if l.Kind == protocol.KindListing {
		c.listing = true
		entry, err := ParseListLine(l.Text)
		if err == nil {
			c.entries = append(c.entries, entry)
		}
		if c.table == nil || err != nil {
			c.theme.GetTextColor().Fprintln(c.out, l.Text)
		}
		return
	}

	c.endListing()
	code, _ := protocol.ReplyCode(l.Text)
	c.theme.ReplyColor(code).Fprintln(c.out, l.Text)
}

// Notice prints a message from the client itself.
func (c *Console) Notice(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgress()
	c.theme.GetInfoColor().Fprintln(c.out, fmt.Sprintf(format, args...))
}

// Error prints err on the error stream.
func (c *Console) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgress()
	c.theme.GetErrorColor().Fprintln(c.errOut, "Error:", err)
}

// Prompt prints a prompt label on its own line.
func (c *Console) Prompt(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgress()
	c.theme.GetPromptColor().Fprintln(c.out, label)
}

// Progress draws a transfer progress line. It has the signature of
// transfer.ProgressFunc.
func (c *Console) Progress(transferred, total int64, speed float64, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = true

	rate := transfer.FormatSize(int64(speed)) + "/s"
	if total > 0 {
		pct := float64(transferred) / float64(total) * 100
		if pct > 100 {
			pct = 100
		}
		fmt.Fprintf(c.out, "\r[%s] %5.1f%% %s %s",
			transfer.ProgressBar(pct), pct, transfer.FormatSize(transferred), rate)
		return
	}
	fmt.Fprintf(c.out, "\r%s %s %s", transfer.FormatSize(transferred), rate, elapsed.Round(time.Millisecond))
}

// Flush completes a listing that was not followed by a reply.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endProgress()
	c.endListing()
}

func (c *Console) endProgress() {
	if c.progress {
		fmt.Fprintln(c.out)
		c.progress = false
	}
}

// endListing renders the buffered table and hands the names to the
// completer.
func (c *Console) endListing() {
	if !c.listing {
		return
	}
	if c.table != nil && len(c.entries) > 0 {
		if err := c.table.FormatFTPDirectory(c.entries); err != nil {
			c.theme.GetErrorColor().Fprintln(c.errOut, "Error:", err)
		}
	}
	if c.completer != nil {
		c.completer.UpdateFromListing(c.entries)
	}
	c.entries = nil
	c.listing = false
}
