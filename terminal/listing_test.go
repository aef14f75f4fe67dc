package terminal

import (
	"errors"
	"testing"
	"time"

	"github.com/jlaffaye/ftp"
)

func mustEntries(t *testing.T, lines ...string) []*ftp.Entry {
	t.Helper()
	entries := make([]*ftp.Entry, 0, len(lines))
	for _, l := range lines {
		e, err := ParseListLine(l)
		if err != nil {
			t.Fatalf("ParseListLine(%q): %v", l, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestParseListLine(t *testing.T) {
	year := time.Now().Year()
	tests := []struct {
		name       string
		line       string
		wantName   string
		wantTarget string
		wantType   ftp.EntryType
		wantSize   uint64
		wantTime   time.Time
	}{
		{
			name:     "unix file",
			line:     "-rw-r--r--   1 owner    group        42 Jan 09 00:30 notes.txt",
			wantName: "notes.txt",
			wantType: ftp.EntryTypeFile,
			wantSize: 42,
			wantTime: time.Date(year, time.January, 9, 0, 30, 0, 0, time.UTC),
		},
		{
			name:     "unix dir with year",
			line:     "drwxr-xr-x   2 owner    group      4096 Mar 09  2021 docs",
			wantName: "docs",
			wantType: ftp.EntryTypeFolder,
			wantSize: 4096,
			wantTime: time.Date(2021, time.March, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "name with spaces",
			line:     "-rw-r--r--   1 owner    group         7 Mar 09  2021 my  file.txt",
			wantName: "my  file.txt",
			wantType: ftp.EntryTypeFile,
			wantSize: 7,
			wantTime: time.Date(2021, time.March, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "symlink",
			line:       "lrwxrwxrwx   1 owner    group        11 Mar 09  2021 latest -> release-1.2",
			wantName:   "latest",
			wantTarget: "release-1.2",
			wantType:   ftp.EntryTypeLink,
			wantSize:   11,
			wantTime:   time.Date(2021, time.March, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "dos dir",
			line:     "03-09-24  02:30PM       <DIR>          docs",
			wantName: "docs",
			wantType: ftp.EntryTypeFolder,
			wantTime: time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "dos file",
			line:     "03-09-24  09:05AM                 1234 report.pdf",
			wantName: "report.pdf",
			wantType: ftp.EntryTypeFile,
			wantSize: 1234,
			wantTime: time.Date(2024, time.March, 9, 9, 5, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseListLine(tt.line)
			if err != nil {
				t.Fatalf("ParseListLine() error = %v", err)
			}
			if e.Name != tt.wantName || e.Target != tt.wantTarget {
				t.Errorf("name = %q -> %q, want %q -> %q", e.Name, e.Target, tt.wantName, tt.wantTarget)
			}
			if e.Type != tt.wantType {
				t.Errorf("type = %v, want %v", e.Type, tt.wantType)
			}
			if e.Size != tt.wantSize {
				t.Errorf("size = %d, want %d", e.Size, tt.wantSize)
			}
			if !e.Time.Equal(tt.wantTime) {
				t.Errorf("time = %v, want %v", e.Time, tt.wantTime)
			}
		})
	}
}

func TestParseListLineRejects(t *testing.T) {
	t.Parallel()
	for _, line := range []string{
		"",
		"total 12",
		"-rw-r--r-- 1 owner group notanumber Mar 09 14:30 x",
		"?rw-r--r--   1 owner    group        42 Mar 09 14:30 x",
		"-rw-r--r--   1 owner    group        42 Mar 09 14:30",
	} {
		if _, err := ParseListLine(line); !errors.Is(err, ErrUnknownListing) {
			t.Errorf("ParseListLine(%q) error = %v, want ErrUnknownListing", line, err)
		}
	}
}
