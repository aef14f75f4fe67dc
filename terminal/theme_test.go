package terminal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestThemeManagerPersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "theme.json")

	tm, err := NewThemeManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if tm.GetThemeName() != "dark" {
		t.Errorf("default theme = %q", tm.GetThemeName())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default theme not saved: %v", err)
	}

	if err := tm.SetTheme("light"); err != nil {
		t.Fatal(err)
	}
	reloaded, err := NewThemeManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.GetThemeName() != "light" {
		t.Errorf("reloaded theme = %q, want light", reloaded.GetThemeName())
	}
}

func TestThemeManagerRejectsUnknown(t *testing.T) {
	t.Parallel()
	tm, err := NewThemeManager("")
	if err != nil {
		t.Fatal(err)
	}
	if err := tm.SetTheme("neon"); err == nil {
		t.Error("SetTheme(neon) accepted")
	}
	if tm.GetThemeName() != "dark" {
		t.Errorf("theme changed to %q", tm.GetThemeName())
	}
}

func TestThemeManagerBadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "theme.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewThemeManager(path); err == nil {
		t.Error("NewThemeManager accepted a corrupt file")
	}
}

func TestThemeNames(t *testing.T) {
	t.Parallel()
	names := ThemeNames()
	if len(names) != 3 || names[0] != "dark" || names[1] != "light" || names[2] != "mono" {
		t.Errorf("ThemeNames() = %v", names)
	}
}
