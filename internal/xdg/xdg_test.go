package xdg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir_UsesXDGConfigHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, AppName); dir != want {
		t.Errorf("ConfigDir() = %q, want %q", dir, want)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("config dir perm = %o, want 700", perm)
	}

	file, err := ConfigFile()
	if err != nil {
		t.Fatalf("ConfigFile() error = %v", err)
	}
	if want := filepath.Join(base, AppName, "config.yaml"); file != want {
		t.Errorf("ConfigFile() = %q, want %q", file, want)
	}
}
