package osutils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestConfigDirCreated(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir("padkey")
	if err != nil {
		t.Fatalf("ConfigDir failed: %v", err)
	}
	if want := filepath.Join(base, "padkey"); dir != want {
		t.Errorf("Expected %s, got %s", want, dir)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		t.Errorf("Expected directory to exist: %v", err)
	}
}
