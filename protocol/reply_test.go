package protocol

import "testing"

func TestReplyCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line   string
		want   int
		wantOK bool
	}{
		{"220 Welcome", 220, true},
		{"214-The following commands are recognized.", 214, true},
		{"550", 550, true},
		{" CWD DELE", 0, false},
		{"ab", 0, false},
		{"999 nope", 0, false},
	}
	for _, tt := range tests {
		code, ok := ReplyCode(tt.line)
		if code != tt.want || ok != tt.wantOK {
			t.Errorf("ReplyCode(%q) = %d, %v; want %d, %v", tt.line, code, ok, tt.want, tt.wantOK)
		}
	}
}

func TestQuotedPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		line    string
		want    string
		wantErr bool
	}{
		{"root", `257 "/" is the current directory`, "/", false},
		{"nested", `257 "/home/alice/src" created`, "/home/alice/src", false},
		{"empty quotes", `257 "" odd`, "", false},
		{"no quotes", "257 /tmp", "", true},
		{"unterminated", `257 "/tmp`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuotedPath(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("QuotedPath(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("QuotedPath(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestMultiLineMarkers(t *testing.T) {
	t.Parallel()
	if !continues("220-Welcome") {
		t.Error("220- should open a multi-line reply")
	}
	if continues("220 Welcome") {
		t.Error("220 should not open a multi-line reply")
	}
	if !ends("220 Ready", "220") || !ends("220", "220") {
		t.Error("220 should close a multi-line reply")
	}
	if ends("220-more", "220") || ends("221 Bye", "220") {
		t.Error("unexpected close of a multi-line reply")
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cmd      Command
		wantLine string
		wantLog  string
	}{
		{Cmd(VerbPASV), "PASV", "PASV"},
		{Cmd(VerbCWD, "/tmp/x"), "CWD /tmp/x", "CWD /tmp/x"},
		{Cmd(VerbCWD, ""), "CWD", "CWD"},
		{Cmd(VerbOPTS, "UTF8 ON"), "OPTS UTF8 ON", "OPTS UTF8 ON"},
		{Cmd(VerbPASS, "hunter2"), "PASS hunter2", "PASS ****"},
		{Cmd(VerbRETR, "My File.txt"), "RETR My File.txt", "RETR My File.txt"},
	}
	for _, tt := range tests {
		if got := tt.cmd.Line(); got != tt.wantLine {
			t.Errorf("Line() = %q, want %q", got, tt.wantLine)
		}
		if got := tt.cmd.String(); got != tt.wantLog {
			t.Errorf("String() = %q, want %q", got, tt.wantLog)
		}
	}
	if Verb(99).String() != "UNKNOWN" {
		t.Errorf("out of range verb = %q", Verb(99).String())
	}
}
