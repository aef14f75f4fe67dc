package terminal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minftp/internal/ftptest"
	"minftp/protocol"
)

type fakeSession struct {
	fakeOps
	path    string
	pathErr error
}

func (s *fakeSession) CurrentPath() (string, error) { return s.path, s.pathErr }
func (s *fakeSession) Username() string             { return "alice" }
func (s *fakeSession) Host() string                 { return "ftp.example.com" }

func TestShellRunsUntilQuit(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{path: "/pub"}
	console, out, _ := newTestConsole(t)
	script := "ls\n\ncd /tmp/x\nfrobnicate\nquit\nls\n"
	input := NewPlainReader(strings.NewReader(script), out)
	sh := NewShell(sess, NewDispatcher(sess, console), input, console)

	if err := sh.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"List:", "ChangeDir:/tmp/x"}
	if strings.Join(sess.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", sess.calls, want)
	}
	if !strings.Contains(out.String(), "alice@ftp.example.com:/pub> ") {
		t.Errorf("prompt missing from %q", out.String())
	}
	if !strings.Contains(out.String(), "Command not supported") {
		t.Errorf("notice missing from %q", out.String())
	}
}

func TestShellEndOfInput(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{path: "/"}
	console, out, _ := newTestConsole(t)
	sh := NewShell(sess, NewDispatcher(sess, console), NewPlainReader(strings.NewReader("help"), out), console)

	if err := sh.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sess.calls) != 1 || sess.calls[0] != "Help:" {
		t.Errorf("calls = %v", sess.calls)
	}
}

func TestShellStopsOnFatalError(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{path: "/"}
	sess.err = &protocol.ControlError{Op: "CWD", Err: errors.New("connection reset")}
	console, out, _ := newTestConsole(t)
	sh := NewShell(sess, NewDispatcher(sess, console), NewPlainReader(strings.NewReader("cd x\nls\n"), out), console)

	err := sh.Run()
	if !protocol.IsFatal(err) {
		t.Fatalf("Run() error = %v, want fatal", err)
	}
	if len(sess.calls) != 1 {
		t.Errorf("commands after fatal error: %v", sess.calls)
	}
}

func TestShellReportsRecoverableErrors(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{path: "/"}
	sess.err = &protocol.TransferError{Op: "list", Err: errors.New("connection reset")}
	console, out, errOut := newTestConsole(t)
	sh := NewShell(sess, NewDispatcher(sess, console), NewPlainReader(strings.NewReader("ls\nls\n"), out), console)

	if err := sh.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sess.calls) != 2 {
		t.Errorf("calls = %v, want two listings", sess.calls)
	}
	if strings.Count(errOut.String(), "list transfer failed") != 2 {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestShellPromptWithoutPath(t *testing.T) {
	t.Parallel()
	sess := &fakeSession{pathErr: &protocol.ParseError{What: "PWD", Line: "257 no quotes"}}
	console, out, _ := newTestConsole(t)
	sh := NewShell(sess, NewDispatcher(sess, console), NewPlainReader(strings.NewReader("quit\n"), out), console)

	if err := sh.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "alice@ftp.example.com:?> ") {
		t.Errorf("prompt = %q", out.String())
	}
}

// TestShellAgainstServer drives a real session through the shell with
// local files in a temporary directory.
func TestShellAgainstServer(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	remote := filepath.ToSlash(filepath.Join(dir, "remote.txt"))
	local := filepath.ToSlash(filepath.Join(dir, "local.txt"))
	if err := os.WriteFile(local, []byte("from the client"), 0644); err != nil {
		t.Fatal(err)
	}

	srv := ftptest.Start(t,
		ftptest.WithUser("alice", "secret"),
		ftptest.WithFile(remote, []byte("from the server")),
	)
	console, out, errOut := newTestConsole(t)
	sess, err := protocol.NewSession(srv.Host(), srv.Port(), protocol.WithOutput(console.Emit))
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Disconnect()

	script := "alice\nwrong\nalice\nsecret\n" +
		"get " + remote + "\n" +
		"put " + local + "\n" +
		"cd " + dir + "\n" +
		"ls\n" +
		"quit\n"
	input := NewPlainReader(strings.NewReader(script), &bytes.Buffer{})

	if err := sess.Connect(); err != nil {
		t.Fatal(err)
	}
	if err := sess.Login(context.Background(), Credentials{Input: input, Console: console}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	sh := NewShell(sess, NewDispatcher(sess, console), input, console)
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := os.ReadFile(remote)
	if err != nil || string(got) != "from the server" {
		t.Errorf("downloaded %q, %v", got, err)
	}
	if stored, ok := srv.File(local); !ok || string(stored) != "from the client" {
		t.Errorf("uploaded %q", stored)
	}
	if strings.Count(out.String(), "Enter your user:") != 2 {
		t.Errorf("user prompted %d times", strings.Count(out.String(), "Enter your user:"))
	}
	for _, want := range []string{"230 Login successful.", "local.txt", "remote.txt", "226 Directory send OK."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
	if errOut.Len() != 0 {
		t.Errorf("stderr = %q", errOut.String())
	}
}
