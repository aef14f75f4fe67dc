package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
)

// ErrUnknownListing is returned for a LIST line in neither the Unix nor
// the MS-DOS format.
var ErrUnknownListing = errors.New("unrecognized listing format")

// now is replaced in tests.
var now = time.Now

// ParseListLine decodes one line of a LIST reply, either Unix style
//
//	-rw-r--r--   1 owner    group        42 Mar 09 14:30 notes.txt
//
// or MS-DOS style
//
//	03-09-24  02:30PM       <DIR>          docs
func ParseListLine(line string) (*ftp.Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	if e, err := parseUnixLine(line); err == nil {
		return e, nil
	}
	if e, err := parseDOSLine(line); err == nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownListing, line)
}

func parseUnixLine(line string) (*ftp.Entry, error) {
	fields, name := cutFields(line, 8)
	if len(fields) < 8 || name == "" || len(fields[0]) != 10 {
		return nil, ErrUnknownListing
	}

	e := &ftp.Entry{Name: name}
	switch fields[0][0] {
	case '-':
		e.Type = ftp.EntryTypeFile
	case 'd':
		e.Type = ftp.EntryTypeFolder
	case 'l':
		e.Type = ftp.EntryTypeLink
		if i := strings.Index(name, " -> "); i >= 0 {
			e.Name, e.Target = name[:i], name[i+4:]
		}
	default:
		return nil, ErrUnknownListing
	}

	size, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return nil, ErrUnknownListing
	}
	e.Size = size

	t, err := parseUnixTime(fields[5], fields[6], fields[7])
	if err != nil {
		return nil, ErrUnknownListing
	}
	e.Time = t
	return e, nil
}

// parseUnixTime handles both "Mar 09 14:30", which leaves out the year,
// and "Mar 09 2021".
func parseUnixTime(month, day, clock string) (time.Time, error) {
	if strings.Contains(clock, ":") {
		year := now().Year()
		t, err := time.Parse("Jan 2 15:04 2006", fmt.Sprintf("%s %s %s %d", month, day, clock, year))
		if err != nil {
			return time.Time{}, err
		}
		// Entries without a year are within the last six months.
		if t.After(now().AddDate(0, 6, 0)) {
			t = t.AddDate(-1, 0, 0)
		}
		return t, nil
	}
	return time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", month, day, clock))
}

func parseDOSLine(line string) (*ftp.Entry, error) {
	fields, name := cutFields(line, 3)
	if len(fields) < 3 || name == "" {
		return nil, ErrUnknownListing
	}

	t, err := time.Parse("01-02-06 03:04PM", fields[0]+" "+fields[1])
	if err != nil {
		return nil, ErrUnknownListing
	}

	e := &ftp.Entry{Name: name, Time: t}
	if fields[2] == "<DIR>" {
		e.Type = ftp.EntryTypeFolder
		return e, nil
	}
	size, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return nil, ErrUnknownListing
	}
	e.Type = ftp.EntryTypeFile
	e.Size = size
	return e, nil
}

// cutFields returns the first n whitespace separated fields of s and the
// remainder with its inner spacing intact, so names may contain spaces.
func cutFields(s string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	for len(fields) < n {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		i := strings.IndexAny(s, " \t")
		if i < 0 {
			fields = append(fields, s)
			s = ""
			break
		}
		fields = append(fields, s[:i])
		s = s[i:]
	}
	return fields, strings.TrimLeft(s, " \t")
}
